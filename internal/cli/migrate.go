package cli

import (
	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/db"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.load()
			if err != nil {
				return err
			}
			return db.RunMigrations(cfg.DatabaseDSN, newLogger(cmd.ErrOrStderr()))
		},
	}
}
