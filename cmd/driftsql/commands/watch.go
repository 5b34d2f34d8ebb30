package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/driftsql/driftsql/internal/config"
	"github.com/driftsql/driftsql/internal/ui"
	"github.com/driftsql/driftsql/internal/watch"
)

func newWatchCommand() *cobra.Command {
	var schemaPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the migration preview whenever the schema changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if schemaPath != "" {
				cfg.SchemaPath = schemaPath
			}
			return runWatch(cfg)
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "Path to the schema file")

	return cmd
}

func runWatch(cfg *config.Config) error {
	ui.Header("driftsql", "Watching "+cfg.SchemaPath+" (ctrl-c to stop)")

	watcher, err := watch.New(cfg.SchemaPath, func() error {
		// Parse errors should not end the watch, the next save may fix them.
		if err := runPlan(cfg); err != nil {
			ui.Error("%v", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		watcher.Stop()
	}()

	return watcher.Start()
}
