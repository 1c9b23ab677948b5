package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/menu-assistant/backend/internal/model/catalog"
	"github.com/zhouzirui/menu-assistant/backend/internal/service/chat"
	"github.com/zhouzirui/menu-assistant/backend/internal/service/conversation"
	"github.com/zhouzirui/menu-assistant/backend/internal/service/orders"
	"github.com/zhouzirui/menu-assistant/backend/internal/service/recommendation"
	"github.com/zhouzirui/menu-assistant/backend/internal/store"
)

func newChatCmd(opts *options) *cobra.Command {
	var sender string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant from the terminal",
		Long: `Chat reads one message per line from stdin and prints the assistant's
reply. State lives in memory and is gone when the command exits. Type
"salir" or send EOF to quit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			menus, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			b, err := opts.branch(menus)
			if err != nil {
				return err
			}
			if sender == "" {
				sender = "cli-" + uuid.NewString()[:8]
			}

			logger := opts.logger()
			defer func() { _ = logger.Sync() }()

			records := store.NewMemoryStore()
			machine := recommendation.NewMachine(menus, records, recommendation.DefaultPolicy(), logger)
			engine := conversation.NewEngine(menus, machine, orders.NewMemorySink(), records, conversation.Options{
				Transcript: chat.NewService(0),
				Logger:     logger,
			})

			return chatLoop(cmd, engine, b, sender)
		},
	}

	cmd.Flags().StringVar(&sender, "sender", "", "sender id (random when empty)")
	return cmd
}

func chatLoop(cmd *cobra.Command, engine *conversation.Engine, b catalog.Branch, sender string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s). Escribe \"salir\" para terminar.\n", b.Name, b.ID)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "salir") {
			return nil
		}

		reply := engine.Respond(cmd.Context(), conversation.Request{
			BranchID:     b.ID,
			SenderID:     sender,
			Text:         text,
			BusinessType: b.BusinessType,
			BusinessID:   b.BusinessID,
		})
		fmt.Fprintln(out, reply.Text)
	}
}
