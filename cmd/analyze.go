package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gaen-tech/leadscout/internal/model"
)

var analyzeName string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze a single company by website URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initAnalysis(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		company, err := model.CompanyFromURL(args[0])
		if err != nil {
			return eris.Wrap(err, "analyze: parse url")
		}
		if analyzeName != "" {
			company.Name = analyzeName
		}

		lead, err := env.Analyzer.Analyze(ctx, company)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		zap.L().Info("analysis finished",
			zap.String("company", lead.Company.Name),
			zap.String("status", string(lead.Status)),
			zap.Float64("score", lead.Analysis.OpportunityScore),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(lead), "analyze: encode result")
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "override the company name derived from the URL")
	rootCmd.AddCommand(analyzeCmd)
}
