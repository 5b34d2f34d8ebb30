package commands

import (
	"github.com/spf13/cobra"

	"github.com/driftsql/driftsql/internal/config"
	"github.com/driftsql/driftsql/internal/ui"
	"github.com/driftsql/driftsql/migrate"
	"github.com/driftsql/driftsql/schemadsl"
)

func newPlanCommand() *cobra.Command {
	var schemaPath string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview the pending migration",
		Long:  "Diff the schema file against the last recorded state and print the up/down scripts without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if schemaPath != "" {
				cfg.SchemaPath = schemaPath
			}
			return runPlan(cfg)
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "Path to the schema file")

	return cmd
}

func runPlan(cfg *config.Config) error {
	plan, err := buildPlan(cfg, "preview", "")
	if err != nil {
		return err
	}
	if !plan.Artifact.HasChanges() {
		ui.Success("No changes, schema matches the recorded state")
		return nil
	}

	ui.Header("driftsql", "Pending migration preview")
	ui.Markdown(plan.Artifact.Markdown())
	if plan.Destructive {
		ui.Warning("This migration contains destructive changes")
	}
	return nil
}

// buildPlan parses the schema file, loads the previous state from the
// migration directory, and assembles the migration plan.
func buildPlan(cfg *config.Config, name, comment string) (*migrate.Plan, error) {
	current, err := schemadsl.ParseFile(config.AppFs, cfg.SchemaPath)
	if err != nil {
		ui.ParseError(cfg.SchemaPath, err)
		return nil, err
	}

	previous, err := migrate.LoadState(config.AppFs, cfg.MigrationsDir)
	if err != nil {
		return nil, err
	}

	return migrate.NewPlan(previous, current, cfg.Provider, migrate.NewRevisionID(name), name, comment)
}
