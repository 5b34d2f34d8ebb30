// Package commands implements the CLI commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/driftsql/driftsql/internal/config"
	"github.com/driftsql/driftsql/internal/debug"
)

// Execute builds the command tree and runs it.
func Execute(version string) error {
	var debugFlag bool

	rootCmd := &cobra.Command{
		Use:     "driftsql",
		Short:   "Schema diffing and migration generation",
		Long:    "driftsql diffs a declarative schema file against the last recorded schema state and generates reversible SQL migrations",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug.Init(debugFlag)
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newPlanCommand())
	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newWatchCommand())

	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	debug.Debug("configuration loaded",
		"schema", cfg.SchemaPath,
		"migrations", cfg.MigrationsDir,
		"provider", cfg.Provider)
	return cfg, nil
}
