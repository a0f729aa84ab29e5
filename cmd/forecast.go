package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/cardwise/internal/ui/theme"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast <item>",
	Short: "Predict when an item will be forgotten",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser(cmd)
		if err != nil {
			return err
		}

		a, err := openApp(cmd, 0)
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := a.Study.Forecast(cmd.Context(), user, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Title.Render(f.ItemID))
		if f.State == nil {
			fmt.Fprintln(out, theme.Hint.Render("never attempted"))
		} else {
			status := theme.Category(string(f.Status)).Render(string(f.Status))
			fmt.Fprintf(out, "%s %s, due in %d day(s)\n", theme.Label.Render("status"), status, f.DueInDays)
		}
		fmt.Fprintf(out, "%s ~%d day(s)\n", theme.Label.Render("forgotten in"), f.ForgetInDays)
		fmt.Fprintf(out, "%s %s (%d samples)\n", theme.Label.Render("recall model"), f.Recall.Status, f.Recall.Samples)
		return nil
	},
}

func init() {
	forecastCmd.Flags().String("user", "", "Learner ID")
}
