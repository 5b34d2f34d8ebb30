package commands

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/driftsql/driftsql/internal/config"
	"github.com/driftsql/driftsql/internal/ui"
)

const starterSchema = `// driftsql schema
//
// Describe your tables here, then run "driftsql generate" to turn changes
// into migrations.

table users {
  id integer @pk @autoincrement
  email string(255) @unique
  name string(100)
  created_at timestamp @default(CURRENT_TIMESTAMP)
}
`

func newInitCommand() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up a new driftsql project",
		Long:  "Create the config file, a starter schema and an empty migration directory in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(provider)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "postgres", "Database provider (postgres, mysql, sqlite)")

	return cmd
}

func runInit(provider string) error {
	switch provider {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported provider %q (expected postgres, mysql or sqlite)", provider)
	}

	cfg := &config.Config{
		SchemaPath:    "schema.dsql",
		MigrationsDir: "migrations",
		Provider:      provider,
	}

	if exists, _ := afero.Exists(config.AppFs, ".driftsql.yaml"); exists {
		return fmt.Errorf(".driftsql.yaml already exists, refusing to overwrite")
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	if exists, _ := afero.Exists(config.AppFs, cfg.SchemaPath); !exists {
		if err := afero.WriteFile(config.AppFs, cfg.SchemaPath, []byte(starterSchema), 0o644); err != nil {
			return fmt.Errorf("write schema: %w", err)
		}
	}
	if err := config.AppFs.MkdirAll(cfg.MigrationsDir, 0o755); err != nil {
		return fmt.Errorf("create migrations dir: %w", err)
	}

	ui.Header("driftsql", "Project initialized")
	ui.Success("Created .driftsql.yaml (provider: %s)", provider)
	ui.Success("Created %s", cfg.SchemaPath)
	ui.Success("Created %s/", cfg.MigrationsDir)
	ui.Info("Edit the schema, then run: driftsql generate --name init")
	return nil
}
