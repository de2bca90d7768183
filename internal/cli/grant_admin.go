package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"quiz-platform/internal/app"
	"quiz-platform/internal/auth"
	"quiz-platform/internal/config"
)

// NewGrantAdminCmd sets or clears the admin flag of an existing account.
func NewGrantAdminCmd(configPath *string) *cobra.Command {
	var (
		login  string
		revoke bool
	)
	cmd := &cobra.Command{
		Use:   "grant-admin",
		Short: "Give (or with --revoke, take away) admin rights by login",
		RunE: func(cmd *cobra.Command, args []string) error {
			if login == "" {
				return fmt.Errorf("--login is required")
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			backend, closeBackend, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeBackend()

			accounts := app.NewAccountService(backend, auth.NewHasher(cfg.Auth.PasswordCost), nil)
			if err := accounts.GrantAdmin(cmd.Context(), login, !revoke); err != nil {
				return fmt.Errorf("grant admin to %s: %w", login, err)
			}
			log.Printf("admin=%t for %s", !revoke, login)
			return nil
		},
	}
	cmd.Flags().StringVar(&login, "login", "", "account login")
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove admin rights instead")
	return cmd
}
