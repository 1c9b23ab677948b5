package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/menu-assistant/backend/internal/model/catalog"
)

func newMenuCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Print the branch menu",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			b, err := opts.branch(store)
			if err != nil {
				return err
			}
			text := b.MenuText
			if text == "" {
				text = catalog.RenderMenu(b.Entries)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
