package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jengzang/patroliq-backend-go/internal/api"
	"github.com/jengzang/patroliq-backend-go/internal/auth"
	"github.com/jengzang/patroliq-backend-go/internal/config"
)

var (
	tokenSubject string
	tokenRoles   []string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the registry write endpoints",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.FromViper(v)
		if err != nil {
			return err
		}

		svc, err := auth.NewJWTService(auth.JWTConfig{
			Secret:     cfg.JWTSecret,
			Issuer:     api.TokenIssuer,
			Expiration: tokenTTL,
		})
		if err != nil {
			return err
		}

		token, err := svc.GenerateToken(tokenSubject, tokenRoles)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "trainer", "token subject")
	tokenCmd.Flags().StringSliceVar(&tokenRoles, "role", []string{auth.RoleTrainer}, "roles to grant")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
