package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
)

var (
	quoteType      string
	quoteProduct   string
	quoteColor     string
	quoteSize      string
	quoteCharms    []string
	quoteSetCharms []string
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a product configuration and print its line id",
	Long: `Resolve a configuration against the catalog and print the line id the
cart would file it under, together with its unit price.

Charm order matters for price: the first four charms are included in the
base price and the rest are charged individually.`,
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVar(&quoteType, "type", "", "product type (required)")
	quoteCmd.Flags().StringVar(&quoteProduct, "product", "", "product id (required)")
	quoteCmd.Flags().StringVar(&quoteColor, "color", "", "color id for apparel")
	quoteCmd.Flags().StringVar(&quoteSize, "size", "", "size id for apparel")
	quoteCmd.Flags().StringSliceVar(&quoteCharms, "charms", nil, "charm ids for a bracelet, in selection order")
	quoteCmd.Flags().StringArrayVar(&quoteSetCharms, "set-charms", nil, "charms of one matching-set bracelet as braceletId=a,b (repeatable)")
	_ = quoteCmd.MarkFlagRequired("type")
	_ = quoteCmd.MarkFlagRequired("product")
}

func runQuote(cmd *cobra.Command, args []string) error {
	req := catalog.Request{
		ProductType: cart.ProductType(quoteType),
		ProductID:   quoteProduct,
		ColorID:     quoteColor,
		SizeID:      quoteSize,
		CharmIDs:    quoteCharms,
	}

	bracelets, err := parseSetCharms(quoteSetCharms)
	if err != nil {
		return err
	}
	req.Bracelets = bracelets

	c := catalog.Default()
	lineID, price, err := c.Quote(req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "line id:    %s\n", lineID)
	fmt.Fprintf(out, "unit price: %s %s\n", price.StringFixed(2), c.Currency())
	return nil
}

func parseSetCharms(values []string) ([]cart.SubBraceletConfig, error) {
	out := make([]cart.SubBraceletConfig, 0, len(values))
	for _, v := range values {
		id, charms, ok := strings.Cut(v, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid --set-charms %q, want braceletId=a,b", v)
		}
		sub := cart.SubBraceletConfig{BraceletID: id, CharmIDs: []string{}}
		for _, charm := range strings.Split(charms, ",") {
			if charm = strings.TrimSpace(charm); charm != "" {
				sub.CharmIDs = append(sub.CharmIDs, charm)
			}
		}
		out = append(out, sub)
	}
	return out, nil
}
