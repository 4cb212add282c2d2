package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-stepgate/auth"
	"github.com/goliatone/go-stepgate/core"
)

func newTokenCommand(rootOpts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue and inspect session tokens",
	}
	cmd.AddCommand(newTokenIssueCommand(rootOpts))
	cmd.AddCommand(newTokenVerifyCommand(rootOpts))
	return cmd
}

func newTokenIssueCommand(rootOpts *rootOptions) *cobra.Command {
	var username string
	var email string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a session token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(username) == "" {
				return fmt.Errorf("token issue: --username is required")
			}
			cfg, codec, err := tokenCodec(cmd, rootOpts)
			if err != nil {
				return err
			}
			token, err := auth.NewAuthenticator(codec, cfg.TokenTTL()).IssueFor(username, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "token subject")
	cmd.Flags().StringVar(&email, "email", "", "email carried in the token")
	return cmd
}

func newTokenVerifyCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a session token and print its payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, codec, err := tokenCodec(cmd, rootOpts)
			if err != nil {
				return err
			}
			var principal auth.Principal
			if err := codec.VerifyInto(strings.TrimSpace(args[0]), &principal); err != nil {
				return err
			}
			encoded, err := json.MarshalIndent(principal, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}
}

func tokenCodec(cmd *cobra.Command, rootOpts *rootOptions) (core.Config, *auth.TokenCodec, error) {
	cfg, err := resolveConfig(cmd.Context(), rootOpts)
	if err != nil {
		return core.Config{}, nil, err
	}
	codec, err := auth.NewTokenCodec(cfg.Auth.JWTSecret)
	if err != nil {
		return core.Config{}, nil, err
	}
	return cfg, codec, nil
}
