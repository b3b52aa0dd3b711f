package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/buytown/admin-console/internal/app"
	"github.com/buytown/admin-console/internal/catalog"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Work with product categories",
}

var categoriesTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the category hierarchy",
	RunE: func(cmd *cobra.Command, args []string) error {
		return openApp(cmd.Context(), func(a *app.App) error {
			tree, err := a.Catalog.CategoryTree(cmd.Context())
			if err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), tree)
			return nil
		})
	},
}

var bannersCmd = &cobra.Command{
	Use:   "banners",
	Short: "Work with storefront banners",
}

var bannersMoveCmd = &cobra.Command{
	Use:   "move [from] [to]",
	Short: "Move the banner at position <from> to position <to> (0-based)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid from position %q", args[0])
		}
		to, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid to position %q", args[1])
		}
		return openApp(cmd.Context(), func(a *app.App) error {
			banners, err := a.Catalog.MoveBanner(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			printBanners(cmd.OutOrStdout(), banners)
			return nil
		})
	},
}

func init() {
	categoriesCmd.AddCommand(categoriesTreeCmd)
	bannersCmd.AddCommand(bannersMoveCmd)
	rootCmd.AddCommand(categoriesCmd, bannersCmd)
}

func printTree(w io.Writer, roots []*catalog.CategoryNode) {
	catalog.Walk(roots, func(n *catalog.CategoryNode, depth int) {
		fmt.Fprintf(w, "%s%s (#%d)\n", strings.Repeat("  ", depth), n.Name, n.ID)
	})
}

func printBanners(w io.Writer, banners []catalog.Banner) {
	for _, b := range banners {
		fmt.Fprintf(w, "%d. %s (#%d)\n", b.Position, b.Title, b.ID)
	}
}
