package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/config"
	"github.com/phrazzld/studyrooms-api/internal/service/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local development",
		Long: "Signs an access token with the configured JWT secret " +
			"(" + config.EnvPrefix + "_AUTH_JWT_SECRET). Accounts live outside this service, " +
			"so any user id is accepted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.ValidateSection(cfg.Auth); err != nil {
				return err
			}

			userID := uuid.New()
			if raw, _ := cmd.Flags().GetString("user"); raw != "" {
				userID, err = uuid.Parse(raw)
				if err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
			}
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if ttl <= 0 {
				ttl = cfg.Auth.TokenLifetime()
			}

			jwtService, err := auth.NewJWTService(cfg.Auth)
			if err != nil {
				return err
			}
			token, err := jwtService.GenerateTokenWithExpiry(context.Background(), userID, time.Now().Add(ttl))
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}

			if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user_id:    %s\nexpires_in: %s\ntoken:      %s\n", userID, ttl, token)
			return nil
		},
	}
	cmd.Flags().String("user", "", "User id to embed (random when empty)")
	cmd.Flags().Duration("ttl", 0, "Token lifetime (defaults to auth.token_lifetime_minutes)")
	cmd.Flags().BoolP("quiet", "q", false, "Print only the token")
	return cmd
}
