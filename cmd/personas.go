package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gaen-tech/leadscout/internal/persona"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "Manage analysis personas",
}

var personasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all personas",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initPersonaStore(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		active := env.Personas.Active(ctx)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tENABLED\tSOURCE\tACTIVE")
		for _, cfg := range env.Personas.All(ctx) {
			source := "custom"
			if env.Personas.IsBuiltin(cfg.ID) {
				source = "builtin"
			}
			marker := ""
			if cfg.ID == active.ID {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n", cfg.ID, cfg.Name, cfg.Enabled, source, marker)
		}
		return w.Flush()
	},
}

var personasSetActiveCmd = &cobra.Command{
	Use:   "set-active <id>",
	Short: "Select the active persona",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initPersonaStore(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		cfg, ok := env.Personas.ByID(ctx, args[0])
		if !ok {
			return eris.Errorf("personas: unknown config %s", args[0])
		}
		if !cfg.Enabled {
			return eris.Errorf("personas: config %s is disabled", args[0])
		}
		env.Personas.SetActive(ctx, cfg)
		zap.L().Info("active persona updated", zap.String("config_id", cfg.ID))
		return nil
	},
}

var personasImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import a custom persona from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initPersonaStore(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		cfg, err := persona.LoadFile(args[0])
		if err != nil {
			return err
		}
		if err := env.Personas.SaveCustom(ctx, cfg); err != nil {
			return err
		}
		zap.L().Info("persona imported",
			zap.String("config_id", cfg.ID),
			zap.String("name", cfg.Name),
		)
		return nil
	},
}

var personasExportCmd = &cobra.Command{
	Use:   "export <id> <file.yaml>",
	Short: "Export a persona to a YAML file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initPersonaStore(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		cfg, ok := env.Personas.ByID(ctx, args[0])
		if !ok {
			return eris.Errorf("personas: unknown config %s", args[0])
		}
		return persona.WriteFile(args[1], cfg)
	},
}

var personasDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a custom persona",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initPersonaStore(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Personas.DeleteCustom(ctx, args[0]); err != nil {
			return err
		}
		zap.L().Info("persona deleted", zap.String("config_id", args[0]))
		return nil
	},
}

func init() {
	personasCmd.AddCommand(personasListCmd, personasSetActiveCmd, personasImportCmd, personasExportCmd, personasDeleteCmd)
	rootCmd.AddCommand(personasCmd)
}
