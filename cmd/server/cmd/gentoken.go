package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfline/server/internal/auth"
)

var gentokenSubject string

var gentokenCmd = &cobra.Command{
	Use:   "gentoken",
	Short: "Generate a bearer token for testing",
	Long: `Generate a signed bearer token using the configured JWT secret.

Useful for exercising protected endpoints without going through /login:

  curl -H "Authorization: Bearer $(server gentoken)" http://localhost:8080/books/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		subject := gentokenSubject
		if subject == "" {
			subject = cfg.Auth.Username
		}

		manager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)
		token, expiresAt, err := manager.Issue(subject)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, token)
		fmt.Fprintf(cmd.ErrOrStderr(), "subject=%s expires=%s\n", subject, expiresAt.Format("2006-01-02T15:04:05Z07:00"))
		return nil
	},
}

func init() {
	gentokenCmd.Flags().StringVar(&gentokenSubject, "subject", "", "token subject (default: configured AUTH_USERNAME)")
}
