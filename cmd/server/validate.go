package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/services"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and the questionnaire catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cfg, zap.NewNop())
		if err != nil {
			return err
		}
		bank, err := services.LoadQuestionBank(cat)
		if err != nil {
			return err
		}
		if _, err := services.NewInterpreter(cat.Interpretations(), cfg.Server.DefaultLocale); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "questions: %d\n", bank.Len())
		for _, p := range cat.Positions() {
			status := "ok"
			if err := services.CheckProfile(p.ID, p.Personality); err != nil {
				status = err.Error()
			}
			fmt.Fprintf(out, "position %s: %s\n", p.ID, status)
		}
		fmt.Fprintln(out, "configuration ok")
		return nil
	},
}
