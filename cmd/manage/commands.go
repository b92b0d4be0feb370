// Copyright 2026 The ParentRant Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"net/mail"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/parentrant/parentrant/internal/config"
	"github.com/parentrant/parentrant/internal/store/postgres"
)

var (
	okFmt   = color.New(color.FgGreen).SprintFunc()
	infoFmt = color.New(color.FgYellow).SprintFunc()
	dimFmt  = color.New(color.Faint).SprintFunc()
)

func defaultConfigPath() string {
	if p := os.Getenv("APP_CONFIG_PATH"); p != "" {
		return p
	}
	return "parent-rant.config.json"
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "manage",
		Short: "ParentRant maintenance commands",
		Long: `manage edits the admin whitelist in parent-rant.config.json and applies
the database schema.

A running server reads the config file once at start; restart it after
changing the whitelist.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to parent-rant.config.json")

	root.AddCommand(
		newAddAdminCmd(&configPath),
		newRemoveAdminCmd(&configPath),
		newListAdminsCmd(&configPath),
		newMigrateCmd(),
	)
	return root
}

func newAddAdminCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "add-admin <email>",
		Short: "Add an email to the admin whitelist",
		Example: `  manage add-admin ops@example.com
  manage add-admin ops@example.com --config /etc/parentrant/parent-rant.config.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]
			if _, err := mail.ParseAddress(email); err != nil {
				return fmt.Errorf("invalid email %q", email)
			}

			err := config.AddAdmin(*configPath, email)
			if errors.Is(err, config.ErrAdminExists) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s is already an admin\n", infoFmt("!"), email)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s added %s\n", okFmt("✓"), email)
			return nil
		},
	}
}

func newRemoveAdminCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-admin <email>",
		Short: "Remove an email from the admin whitelist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.RemoveAdmin(*configPath, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s removed %s\n", okFmt("✓"), args[0])
			return nil
		},
	}
}

func newListAdminsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list-admins",
		Short: "List the admin whitelist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadAppConfig(*configPath)
			if err != nil {
				return err
			}
			emails := cfg.AdminEmails()
			if len(emails) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimFmt("no admins configured"))
				return nil
			}
			for _, email := range emails {
				fmt.Fprintln(cmd.OutOrStdout(), email)
			}
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long:  "Apply the embedded schema using the DB_* environment variables.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := postgres.New(ctx, postgres.Config{
				Host:         cfg.Database.Host,
				Port:         cfg.Database.Port,
				User:         cfg.Database.User,
				Password:     cfg.Database.Password,
				Database:     cfg.Database.Database,
				SSLMode:      cfg.Database.SSLMode,
				MaxOpenConns: cfg.Database.MaxOpenConns,
				MaxIdleConns: cfg.Database.MaxIdleConns,
			})
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Applying initial schema...")
			if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s migration successful\n", okFmt("✓"))
			return nil
		},
	}
}
