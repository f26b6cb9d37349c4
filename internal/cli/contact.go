package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/pii"
)

func NewContactCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Work with sealed customer contact details",
	}
	cmd.AddCommand(newContactDecryptCommand(rootOpts))
	return cmd
}

func newContactDecryptCommand(rootOpts *RootOptions) *cobra.Command {
	var orderID string

	cmd := &cobra.Command{
		Use:   "decrypt [ciphertext]",
		Short: "Open a sealed contact bundle, given inline or read from an order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (orderID == "") == (len(args) == 0) {
				return fmt.Errorf("pass either a ciphertext argument or --order")
			}

			cfg, err := rootOpts.load()
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr())
			ring, err := buildKeyring(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			sealed := ""
			if len(args) == 1 {
				sealed = args[0]
			} else {
				database, err := db.Open(cfg.DatabaseDSN)
				if err != nil {
					return err
				}
				defer database.Close()

				order, err := checkout.NewLedger(database).GetOrder(cmd.Context(), orderID)
				if err != nil {
					return err
				}
				sealed = order.CustomerDetails
			}

			contact, err := checkout.DecryptContact(pii.NewCodec(ring), sealed)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(contact)
		},
	}

	cmd.Flags().StringVar(&orderID, "order", "", "vendor order id whose customer details should be opened")

	return cmd
}
