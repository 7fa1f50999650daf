package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/api"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/config"
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.buildTime=...".
var (
	version   = "dev"
	commit    = ""
	buildTime = ""
)

func buildInfo() api.BuildInfo {
	return api.BuildInfo{Version: version, Commit: commit, BuildTime: buildTime}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, _ []string) {
		b := buildInfo()
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s", config.AppName, b.Version)
		if b.Commit != "" {
			fmt.Fprintf(cmd.OutOrStdout(), " (%s)", b.Commit)
		}
		if b.BuildTime != "" {
			fmt.Fprintf(cmd.OutOrStdout(), " built %s", b.BuildTime)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	},
}
