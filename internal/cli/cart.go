package cli

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/checkout"
)

type cartShowOptions struct {
	Path     string
	Lang     string
	Currency string
}

func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect the device-local cart",
	}
	cmd.AddCommand(newCartShowCommand(rootOpts))
	return cmd
}

func newCartShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &cartShowOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the anonymous cart stored on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.load()
			if err != nil {
				return err
			}
			if opts.Path == "" {
				opts.Path = cfg.LocalCartPath
			}

			tag, err := language.Parse(opts.Lang)
			if err != nil {
				return fmt.Errorf("parse language: %w", err)
			}
			unit, err := currency.ParseISO(opts.Currency)
			if err != nil {
				return fmt.Errorf("parse currency: %w", err)
			}

			store, err := cart.OpenLocalStore(opts.Path, newLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer store.Close()

			lines, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), message.NewPrinter(tag), unit, lines)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Path, "path", "", "local cart database (defaults to LOCAL_CART_PATH)")
	cmd.Flags().StringVar(&opts.Lang, "lang", "en-US", "language used for number formatting")
	cmd.Flags().StringVar(&opts.Currency, "currency", "USD", "ISO 4217 currency code")

	return cmd
}

func printCart(w io.Writer, p *message.Printer, unit currency.Unit, lines []cart.Line) {
	if len(lines) == 0 {
		p.Fprintln(w, "cart is empty")
		return
	}

	money := func(v decimal.Decimal) string {
		return p.Sprint(currency.Symbol(unit.Amount(v.InexactFloat64())))
	}

	for _, l := range lines {
		name := l.Product.Name
		if l.Size != "" {
			name += " (" + l.Size + ")"
		}
		p.Fprintf(w, "%-32s %-16s x%d  %s\n", name, l.Product.StoreName, l.Quantity, money(l.Subtotal()))
	}

	s := checkout.Summarize(lines)
	p.Fprintf(w, "items: %d\n", cart.TotalItemCount(lines))
	p.Fprintf(w, "subtotal: %s\n", money(s.Subtotal))
	p.Fprintf(w, "shipping: %s\n", money(s.Shipping))
	p.Fprintf(w, "tax: %s\n", money(s.Tax))
	p.Fprintf(w, "total: %s\n", money(s.Total))
}
