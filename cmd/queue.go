package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/cardwise/internal/ui/theme"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show the next study session for a deck",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser(cmd)
		if err != nil {
			return err
		}
		deck, _ := cmd.Flags().GetString("deck")
		if deck == "" {
			return fmt.Errorf("--deck is required")
		}
		size, _ := cmd.Flags().GetInt("size")

		a, err := openApp(cmd, size)
		if err != nil {
			return err
		}
		defer a.Close()

		plan, err := a.Study.BuildSession(cmd.Context(), user, deck)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("%3s  %-24s  %-9s  %7s", "#", "Item", "Category", "Score")))
		fmt.Fprintln(out, strings.Repeat("─", 50))
		for i, slot := range plan.Slots {
			category := theme.Category(string(slot.Category)).Render(fmt.Sprintf("%-9s", slot.Category))
			fmt.Fprintf(out, "%3d  %-24s  %s  %7.2f\n", i+1, slot.ItemID, category, slot.Score)
		}
		fmt.Fprintf(out, "\n%d items (plan %s)\n", len(plan.Slots), plan.ID)
		return nil
	},
}

func init() {
	queueCmd.Flags().String("user", "", "Learner ID")
	queueCmd.Flags().String("deck", "", "Deck to study")
	queueCmd.Flags().Int("size", 0, "Maximum items in the session (default from config)")
}
