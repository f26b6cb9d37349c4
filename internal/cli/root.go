package cli

import (
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the marketplace-cart command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "marketplace-cart",
		Short: "Marketplace cart and checkout service",
		Long: `Keeps a shopper's cart reconciled between the device-local store and the
server, and turns a cart into one pending order per vendor at checkout.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML file of configuration keys (environment wins)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewContactCommand(opts))

	return cmd
}

func (o *RootOptions) load() (config.Config, error) {
	if o.ConfigPath == "" {
		return config.Load(), nil
	}
	return config.LoadFile(o.ConfigPath)
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "[marketplace-cart] ", log.LstdFlags|log.Lshortfile)
}
