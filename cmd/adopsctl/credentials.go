package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onegreenvn/ads-proposal-backend/internal/config"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/api_key"
	"github.com/onegreenvn/ads-proposal-backend/internal/services/auth"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage reviewer tokens",
	}

	var reviewerID, name string
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a reviewer JWT signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			token, expiresAt, err := auth.NewAuthService(cfg.Auth).IssueToken(reviewerID, name)
			if err != nil {
				return fmt.Errorf("issuing token: %w", err)
			}
			return printJSON(map[string]interface{}{
				"token":      token,
				"expires_at": expiresAt,
			})
		},
	}
	issue.Flags().StringVar(&reviewerID, "reviewer", "", "Reviewer ID (required)")
	issue.Flags().StringVar(&name, "name", "", "Reviewer display name")
	_ = issue.MarkFlagRequired("reviewer")

	cmd.AddCommand(issue)
	return cmd
}

func newAPIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Create orchestrator API keys",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "generate",
			Short: "Generate a random key and the hash to configure",
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := api_key.GenerateAPIKey()
				if err != nil {
					return err
				}
				hash, err := api_key.HashAPIKey(key)
				if err != nil {
					return err
				}
				fmt.Printf("API key:  %s\nORCHESTRATOR_API_KEY_HASH=%s\n", key, hash)
				return nil
			},
		},
		&cobra.Command{
			Use:   "hash <key>",
			Short: "Print the bcrypt hash of an existing key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				hash, err := api_key.HashAPIKey(args[0])
				if err != nil {
					return err
				}
				fmt.Println(hash)
				return nil
			},
		},
	)

	return cmd
}
