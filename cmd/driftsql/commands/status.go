package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/driftsql/driftsql/history"
	"github.com/driftsql/driftsql/internal/config"
	"github.com/driftsql/driftsql/internal/ui"
	"github.com/driftsql/driftsql/migrate"
)

func newStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show local migrations and their applied state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runStatus(cmd.Context(), cfg)
		},
	}
	return cmd
}

func runStatus(ctx context.Context, cfg *config.Config) error {
	revisions, err := migrate.ListRevisions(config.AppFs, cfg.MigrationsDir)
	if err != nil {
		return err
	}
	if len(revisions) == 0 {
		ui.Info("No migrations in %s", cfg.MigrationsDir)
		return nil
	}

	ui.Header("driftsql", "Migration status")

	var store *history.Store
	applied := map[string]bool{}
	if cfg.DatabaseURL == "" {
		ui.Info("No database configured, showing local migrations only")
	} else {
		db, s, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		store = s
		if err := store.Init(ctx); err != nil {
			return err
		}
		ids, err := store.AppliedIDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			applied[id] = true
		}
	}

	rows := make([][]string, 0, len(revisions))
	pending := 0
	for _, rev := range revisions {
		artifact, err := migrate.ReadArtifact(config.AppFs, cfg.MigrationsDir, rev)
		if err != nil {
			return err
		}
		state := "pending"
		if store == nil {
			state = "local"
		} else if applied[rev] {
			state = "applied"
		}
		if state == "pending" {
			pending++
		}
		rows = append(rows, []string{rev, artifact.Name, state})
	}
	ui.Table([]string{"Revision", "Name", "State"}, rows)

	if store != nil {
		if pending > 0 {
			ui.Warning("%d migration(s) pending", pending)
		} else {
			ui.Success("Database is up to date")
		}

		latest, _, err := store.Latest(ctx)
		switch {
		case errors.Is(err, history.ErrRevisionNotFound):
		case err != nil:
			return err
		default:
			ui.Info("Latest applied: %s (%s)", latest.ID, latest.AppliedAt.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}
