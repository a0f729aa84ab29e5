package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/cardwise/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser(cmd)
		if err != nil {
			return err
		}
		deck, _ := cmd.Flags().GetString("deck")

		a, err := openApp(cmd, 0)
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.Study.Stats(cmd.Context(), user, deck)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		title := "Stats for " + s.UserID
		if s.DeckID != "" {
			title += " in " + s.DeckID
		}
		fmt.Fprintln(out, theme.Title.Render(title))

		rows := []struct {
			label string
			value string
		}{
			{"items", fmt.Sprint(s.TotalItems)},
			{"attempted", fmt.Sprint(s.Attempted)},
			{"new", fmt.Sprint(s.New)},
			{"due", fmt.Sprint(s.Due)},
			{"mastered", fmt.Sprint(s.Mastered)},
			{"reviews", fmt.Sprint(s.TotalReviews)},
			{"accuracy", fmt.Sprintf("%.1f%%", s.Accuracy)},
			{"today", fmt.Sprint(s.ReviewedToday)},
			{"streak", fmt.Sprintf("%d day(s)", s.StreakDays)},
			{"recall model", fmt.Sprintf("%s (%d samples)", s.Recall.Status, s.Recall.Samples)},
		}
		for _, r := range rows {
			fmt.Fprintf(out, "%s %s\n", theme.Label.Render(fmt.Sprintf("%-13s", r.label)), r.value)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().String("user", "", "Learner ID")
	statsCmd.Flags().String("deck", "", "Restrict to one deck")
}
