package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "doccheck/internal/jwt_token"
	"doccheck/internal/platform/config"
)

func newTokenCmd() *cobra.Command {
	var (
		service string
		scope   string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a service token for the HTTP API",
		Long:  "Sign a bearer token with SERVICE_JWT_KEY so another service can call the validation endpoints.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if !cfg.Auth.Enabled() {
				return errors.New("SERVICE_JWT_KEY is not set")
			}
			tokens := jwttoken.NewJWTService(cfg.Auth.SigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
			token, err := tokens.GenerateServiceToken(service, scope, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&service, "service", "", "Name of the calling service (token subject)")
	cmd.Flags().StringVar(&scope, "scope", "validate", "Scope recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("service")

	return cmd
}
