package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gaen-tech/leadscout/internal/model"
	"github.com/gaen-tech/leadscout/internal/store"
)

var (
	leadsStatus   string
	leadsMinScore float64
	leadsLimit    int
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and manage the lead log",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initPersonaStore(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		leads, err := env.Store.ListLeads(ctx, store.LeadFilter{
			Status:   model.LeadStatus(leadsStatus),
			MinScore: leadsMinScore,
			Limit:    leadsLimit,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCOMPANY\tSCORE\tROI\tSTATUS\tCREATED")
		for _, l := range leads {
			fmt.Fprintf(w, "%s\t%s\t%.0f\t%.0f\t%s\t%s\n",
				l.ID, l.Company.Name,
				l.Analysis.OpportunityScore, l.Analysis.EstimatedAnnualROI,
				l.Status, l.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
		return w.Flush()
	},
}

var leadsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one lead as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initPersonaStore(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		lead, err := env.Store.GetLead(ctx, args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(lead)
	},
}

var leadsSetStatusCmd = &cobra.Command{
	Use:   "set-status <id> <status>",
	Short: "Update a lead's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initPersonaStore(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.UpdateLeadStatus(ctx, args[0], model.LeadStatus(args[1])); err != nil {
			return err
		}
		zap.L().Info("lead status updated",
			zap.String("lead_id", args[0]),
			zap.String("status", args[1]),
		)
		return nil
	},
}

var leadsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a lead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initPersonaStore(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Store.DeleteLead(ctx, args[0]); err != nil {
			return err
		}
		zap.L().Info("lead deleted", zap.String("lead_id", args[0]))
		return nil
	},
}

func init() {
	leadsListCmd.Flags().StringVar(&leadsStatus, "status", "", "filter by status (prospected, qualified, unqualified)")
	leadsListCmd.Flags().Float64Var(&leadsMinScore, "min-score", 0, "filter by minimum opportunity score")
	leadsListCmd.Flags().IntVar(&leadsLimit, "limit", 0, "max leads to list")
	leadsCmd.AddCommand(leadsListCmd, leadsShowCmd, leadsSetStatusCmd, leadsDeleteCmd)
	rootCmd.AddCommand(leadsCmd)
}
