package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/cardwise/internal/store"
	"github.com/abhisek/cardwise/internal/ui/theme"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage deck items",
}

var itemAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add or replace an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deck, _ := cmd.Flags().GetString("deck")
		order, _ := cmd.Flags().GetInt("order")
		prompt, _ := cmd.Flags().GetString("prompt")
		answer, _ := cmd.Flags().GetString("answer")
		if deck == "" {
			return fmt.Errorf("--deck is required")
		}

		a, err := openApp(cmd, 0)
		if err != nil {
			return err
		}
		defer a.Close()

		item := store.Item{ID: args[0], DeckID: deck, Order: order, Prompt: prompt, Answer: answer}
		if err := a.Store.ItemRepo().Upsert(cmd.Context(), item); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s in deck %s\n", item.ID, item.DeckID)
		return nil
	},
}

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List decks, or the items of one deck",
	RunE: func(cmd *cobra.Command, args []string) error {
		deck, _ := cmd.Flags().GetString("deck")

		a, err := openApp(cmd, 0)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		repo := a.Store.ItemRepo()
		if deck == "" {
			decks, err := repo.ListDecks(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("%-30s  %5s", "Deck", "Items")))
			for _, d := range decks {
				fmt.Fprintf(out, "%-30s  %5d\n", d.DeckID, d.Items)
			}
			fmt.Fprintf(out, "\n%d decks\n", len(decks))
			return nil
		}

		items, err := repo.ListByDeck(cmd.Context(), deck)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("%-24s  %5s  %-30s  %s", "ID", "Order", "Prompt", "Answer")))
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, it := range items {
			fmt.Fprintf(out, "%-24s  %5d  %-30s  %s\n", it.ID, it.Order, truncate(it.Prompt, 30), it.Answer)
		}
		fmt.Fprintf(out, "\n%d items\n", len(items))
		return nil
	},
}

var itemRmDeckCmd = &cobra.Command{
	Use:   "rm-deck <deck>",
	Short: "Delete a deck, its items and every review state for them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, 0)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Store.ItemRepo().DeleteDeck(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d items from deck %s\n", n, args[0])
		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	itemAddCmd.Flags().String("deck", "", "Deck the item belongs to")
	itemAddCmd.Flags().Int("order", 0, "Position within the deck")
	itemAddCmd.Flags().String("prompt", "", "Question text")
	itemAddCmd.Flags().String("answer", "", "Answer text")

	itemListCmd.Flags().String("deck", "", "List the items of this deck")

	itemCmd.AddCommand(itemAddCmd)
	itemCmd.AddCommand(itemListCmd)
	itemCmd.AddCommand(itemRmDeckCmd)
}
