package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"go-task-organizer/internal/storage"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Upload a JSON snapshot to the backup provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.shutdown(ctx)

		dst, err := storage.New(ctx, a.cfg.Backup)
		if err != nil {
			return err
		}
		key, err := storage.Backup(ctx, dst, a.org.Snapshot(), time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", key)
		return nil
	},
}
