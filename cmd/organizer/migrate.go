package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the storage schema",
	Long: `Create or update the schema of the configured backend.

STORE_BACKEND=gorm migrates the folders, tasks, folder_tasks and store_meta
tables. STORE_BACKEND=neo4j creates the node id constraints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		_, closeFn, err := openPersister(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		logger.Info("schema up to date", "backend", cfg.Store.Backend)
		fmt.Fprintln(cmd.OutOrStdout(), "Migration complete")
		return closeFn()
	},
}
