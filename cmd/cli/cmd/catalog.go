package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
)

var catalogType string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List catalog products",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := cart.ProductType(catalogType)
		if t != "" && !t.Valid() {
			return fmt.Errorf("unknown product type %q", catalogType)
		}

		c := catalog.Default()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tID\tNAME\tPRICE\tOPTIONS")
		for _, p := range c.Products(t) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\n", p.Type, p.ID, p.Name, p.Price.StringFixed(2), c.Currency(), options(p))
		}
		return w.Flush()
	},
}

func init() {
	catalogCmd.Flags().StringVar(&catalogType, "type", "", "only list products of this type (hoodie, sweatpants, bracelet, matchingSet)")
}

func options(p catalog.Product) string {
	switch p.Type {
	case cart.ProductHoodie, cart.ProductSweatpants:
		colors := make([]string, 0, len(p.Colors))
		for _, o := range p.Colors {
			colors = append(colors, o.ID)
		}
		sizes := make([]string, 0, len(p.Sizes))
		for _, o := range p.Sizes {
			sizes = append(sizes, o.ID)
		}
		return "colors=" + strings.Join(colors, ",") + " sizes=" + strings.Join(sizes, ",")
	case cart.ProductBracelet:
		return "charms=" + strings.Join(p.Charms, ",")
	case cart.ProductMatchingSet:
		parts := make([]string, 0, len(p.Bracelets))
		for _, b := range p.Bracelets {
			parts = append(parts, b.ID+"="+strings.Join(b.Charms, ","))
		}
		return strings.Join(parts, " ")
	}
	return ""
}
