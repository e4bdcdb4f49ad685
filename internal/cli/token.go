package cli

import (
	"fmt"

	"github.com/estatedesk/portal/internal/utils"
	"github.com/spf13/cobra"
)

func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var role, subject, user string
	var hours int

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the API",
		Example: `  portalctl token --role admin
  portalctl token --role consultant --subject 2b0c6f0e-9d1e-4c57-a3f4-8f1c2d9e7a10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != utils.RoleAdmin && subject == "" {
				return fmt.Errorf("--subject is required for role %q", role)
			}

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			utils.SetJWTSecret(cfg.JWT.Secret)
			if hours <= 0 {
				hours = cfg.JWT.ExpireHour
			}
			if user == "" {
				user = "portalctl"
			}

			token, err := utils.GenerateToken(user, subject, role, hours)
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"token":        token,
					"role":         role,
					"expire_hours": hours,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", utils.RoleAdmin, "admin, consultant or client")
	cmd.Flags().StringVar(&subject, "subject", "", "consultant or client ID the token acts as")
	cmd.Flags().StringVar(&user, "user", "", "user ID recorded in the token (default portalctl)")
	cmd.Flags().IntVar(&hours, "hours", 0, "lifetime in hours (default jwt.expire_hour)")
	return cmd
}
