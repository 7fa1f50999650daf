package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/api"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/config"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/services"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Print item statistics and per-trait reliability of completed questionnaires as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runAnalytics(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func runAnalytics(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if cfg.Store.Kind == config.StoreMemory {
		return errors.New("store.kind is memory; analytics need a database store")
	}
	cat, err := loadCatalog(cfg, zap.NewNop())
	if err != nil {
		return err
	}
	bank, err := services.LoadQuestionBank(cat)
	if err != nil {
		return err
	}
	store, err := openStore(ctx, cfg, zap.NewNop())
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := services.NewAnalyticsService(api.NewCompletedSessions(store), bank).Summary(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
