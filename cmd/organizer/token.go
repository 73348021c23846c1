package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"go-task-organizer/internal/utils"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.JWT.AuthEnabled() {
			return errors.New("JWT_SECRET is not set, the API accepts unauthenticated requests")
		}
		token, err := utils.GenerateToken(cfg, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
