// Command menuctl drives the order parser and the conversation engine from a
// terminal, against a catalog file or the demo cafeteria.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhouzirui/menu-assistant/backend/internal/model/catalog"
)

type options struct {
	catalogFile string
	branchID    string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "menuctl",
		Short: "Menu assistant command line",
		Long: `menuctl runs the menu assistant without the HTTP server.

Use "parse" to see how a message turns into a cart and "chat" to talk to
the assistant turn by turn. Without --catalog the demo cafeteria is used.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.catalogFile, "catalog", os.Getenv("CATALOG_FILE"), "YAML catalog file (defaults to the demo cafeteria)")
	rootCmd.PersistentFlags().StringVarP(&opts.branchID, "branch", "b", catalog.DemoBranchID, "branch id")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log engine decisions to stderr")

	rootCmd.AddCommand(newParseCmd(opts))
	rootCmd.AddCommand(newChatCmd(opts))
	rootCmd.AddCommand(newMenuCmd(opts))
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (o *options) loadCatalog() (*catalog.MemoryStore, error) {
	if o.catalogFile == "" {
		return catalog.NewMemoryStore(catalog.Seed()), nil
	}
	return catalog.LoadFile(o.catalogFile)
}

func (o *options) branch(store *catalog.MemoryStore) (catalog.Branch, error) {
	b, ok := store.FindByID(o.branchID)
	if !ok {
		return catalog.Branch{}, fmt.Errorf("unknown branch %q", o.branchID)
	}
	return b, nil
}

func (o *options) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
