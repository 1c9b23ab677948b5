package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/menu-assistant/backend/internal/analysis/orderparse"
)

func newParseCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse [text...]",
		Short: "Turn a free-text message into a cart",
		Long: `Parse matches the message against the branch catalog and prints the
resulting cart. Nothing is stored.`,
		Example: `  menuctl parse "quiero dos cafés americanos y un croissant"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			b, err := opts.branch(store)
			if err != nil {
				return err
			}

			cart := orderparse.Parse(strings.Join(args, " "), b.Entries)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cart)
			}
			if cart.IsEmpty() {
				fmt.Fprintln(out, "no products recognized")
				return nil
			}
			fmt.Fprintln(out, cart.Summary())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the cart as JSON")
	return cmd
}
