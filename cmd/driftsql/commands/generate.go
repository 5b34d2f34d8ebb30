package commands

import (
	"context"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/driftsql/driftsql/history"
	"github.com/driftsql/driftsql/internal/config"
	"github.com/driftsql/driftsql/internal/ui"
	"github.com/driftsql/driftsql/migrate"
)

func newGenerateCommand() *cobra.Command {
	var (
		schemaPath string
		name       string
		comment    string
		force      bool
		record     bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a migration from schema changes",
		Long:  "Diff the schema file against the last recorded state, write the up/down scripts to the migration directory and advance the recorded state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if schemaPath != "" {
				cfg.SchemaPath = schemaPath
			}
			return runGenerate(cmd.Context(), cfg, name, comment, force, record)
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "Path to the schema file")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Name for the migration")
	cmd.Flags().StringVar(&comment, "comment", "", "Free-text comment stored with the migration")
	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation for destructive changes")
	cmd.Flags().BoolVar(&record, "record", false, "Record the revision in the history database (requires DATABASE_URL)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runGenerate(ctx context.Context, cfg *config.Config, name, comment string, force, record bool) error {
	plan, err := buildPlan(cfg, name, comment)
	if err != nil {
		return err
	}
	if !plan.Artifact.HasChanges() {
		ui.Success("No changes, schema matches the recorded state")
		return nil
	}

	if plan.Destructive && !force {
		ui.Warning("This migration contains destructive changes:")
		var destructive []string
		for _, action := range plan.Actions {
			if action.Destructive() {
				destructive = append(destructive, action.Description())
			}
		}
		ui.List(destructive)

		confirmed := false
		prompt := &survey.Confirm{Message: "Write this migration anyway?"}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			ui.Info("Aborted, nothing written")
			return nil
		}
	}

	artifact := plan.Artifact
	if err := migrate.WriteArtifact(config.AppFs, cfg.MigrationsDir, artifact); err != nil {
		return err
	}
	if err := migrate.SaveState(config.AppFs, cfg.MigrationsDir, plan.Snapshot); err != nil {
		return err
	}
	ui.Success("Created migration %s (%d statements up, %d down)",
		artifact.Revision, len(artifact.Up), len(artifact.Down))

	if record {
		db, store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := store.Init(ctx); err != nil {
			return err
		}
		rev := history.Revision{
			ID:       artifact.Revision,
			Name:     artifact.Name,
			Comment:  artifact.Comment,
			Checksum: history.Checksum(artifact.Up),
		}
		if err := store.Record(ctx, rev, plan.Snapshot); err != nil {
			return err
		}
		ui.Success("Recorded revision %s in history", artifact.Revision)
	}

	return nil
}
