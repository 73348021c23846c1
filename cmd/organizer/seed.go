package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add the sample folders and tasks to a fresh install",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}

		seeded, err := a.org.Seed()
		if err != nil {
			a.close()
			return err
		}
		if seeded {
			fmt.Fprintln(cmd.OutOrStdout(), "Sample content added")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Already seeded, nothing to do")
		}
		return a.shutdown(ctx)
	},
}
