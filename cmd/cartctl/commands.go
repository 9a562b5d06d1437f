package main

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	cartadapter "github.com/dwikikusuma/storefront/internal/cart/infra/adapter"
	cartrecords "github.com/dwikikusuma/storefront/internal/cart/infra/recordhttp"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogrecords "github.com/dwikikusuma/storefront/internal/catalog/infra/recordhttp"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/httpx"
	"github.com/dwikikusuma/storefront/pkg/logger"
)

type globals struct {
	recordsURL string
	timeout    time.Duration
	currency   string
	userID     string
	logLevel   string
}

func newRootCmd(out io.Writer) *cobra.Command {
	g := &globals{}
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Config{RecordServiceURL: "http://localhost:3001", RemoteTimeout: 5 * time.Second, Currency: "USD"}
	}

	root := &cobra.Command{
		Use:           "cartctl",
		Short:         "Inspect and edit remote storefront carts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&g.recordsURL, "records-url", cfg.RecordServiceURL, "record service base URL")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", cfg.RemoteTimeout, "per request timeout")
	root.PersistentFlags().StringVar(&g.currency, "currency", cfg.Currency, "ISO 4217 currency used for totals")
	root.PersistentFlags().StringVarP(&g.userID, "user", "u", "", "user id owning the cart")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level")
	_ = root.MarkPersistentFlagRequired("user")

	root.AddCommand(
		newListCmd(g),
		newAddCmd(g),
		newSetCmd(g),
		newRemoveCmd(g),
		newClearCmd(g),
	)
	return root
}

func newListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the user's cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo := cartrecords.NewCartRepo(g.client(), 0)
			records, err := repo.ListRecords(cmd.Context(), g.userID)
			if err != nil {
				return err
			}
			entries := make([]cartdomain.Entry, 0, len(records))
			for _, r := range records {
				entries = append(entries, r.Entry())
			}
			return g.printCart(cmd.OutOrStdout(), cartdomain.NewView(cartdomain.NewLedger(entries...)))
		},
	}
}

func newAddCmd(g *globals) *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Add a product to the user's cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := cartadapter.NewCatalogLookup(catalogapp.NewService(catalogrecords.NewProductRepo(g.client())))
			product, err := catalog.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("product %s: %w", args[0], err)
			}
			return g.withCart(cmd, func(cart *cartapp.Service) *cartapp.Sync {
				return cart.AddToCart(product, quantity)
			})
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "quantity to add")
	return cmd
}

func newSetCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "set PRODUCT_ID QUANTITY",
		Short: "Set the quantity of a product; zero removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var quantity int
			if _, err := fmt.Sscan(args[1], &quantity); err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			return g.withCart(cmd, func(cart *cartapp.Service) *cartapp.Sync {
				return cart.UpdateQuantity(args[0], quantity)
			})
		},
	}
}

func newRemoveCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "remove PRODUCT_ID",
		Short: "Remove a product from the user's cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withCart(cmd, func(cart *cartapp.Service) *cartapp.Sync {
				return cart.RemoveFromCart(args[0])
			})
		},
	}
}

func newClearCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every record of the user's cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.withCart(cmd, func(cart *cartapp.Service) *cartapp.Sync {
				return cart.ClearCart()
			})
		},
	}
}

// withCart loads the user's cart into a fresh engine, applies one mutation and
// waits for it to reach the record service before printing the result.
func (g *globals) withCart(cmd *cobra.Command, mutate func(cart *cartapp.Service) *cartapp.Sync) error {
	ctx := cmd.Context()
	log := logger.New(logger.Options{Service: "cartctl", Level: g.logLevel, Format: "text", Output: cmd.ErrOrStderr()})

	cart := cartapp.NewService(cartrecords.NewCartRepo(g.client(), 0), cartapp.Options{
		Logger:        log,
		RemoteTimeout: g.timeout,
		Retryable:     httpx.IsRetryableError,
	})
	if err := cart.LoadForUser(ctx, g.userID); err != nil {
		return err
	}

	if err := mutate(cart).Wait(ctx); err != nil {
		return err
	}
	log.Debug("cart synced", slog.String("user_id", g.userID))
	return g.printCart(cmd.OutOrStdout(), cart.Cart())
}

func (g *globals) client() *httpx.Client {
	return httpx.NewClient(g.recordsURL, g.timeout)
}

func (g *globals) printCart(out io.Writer, view cartdomain.View) error {
	unit, err := currency.ParseISO(g.currency)
	if err != nil {
		return fmt.Errorf("currency %q: %w", g.currency, err)
	}
	p := message.NewPrinter(language.English)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, e := range view.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			e.Product.ID,
			e.Product.Name,
			e.Quantity,
			p.Sprint(currency.Symbol(unit.Amount(e.Product.Price))),
			p.Sprint(currency.Symbol(unit.Amount(e.Product.Price*float64(e.Quantity)))),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = p.Fprintf(out, "%d items, total %v\n", view.ItemCount, currency.Symbol(unit.Amount(view.Total)))
	return err
}
