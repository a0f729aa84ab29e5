package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/cardwise/internal/study"
	"github.com/abhisek/cardwise/internal/ui/theme"
)

var answerCmd = &cobra.Command{
	Use:   "answer <item>",
	Short: "Record an answer and reschedule the item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser(cmd)
		if err != nil {
			return err
		}
		correct, _ := cmd.Flags().GetBool("correct")
		attempt := study.Attempt{UserID: user, ItemID: args[0], Correct: correct}
		if cmd.Flags().Changed("ms") {
			ms, _ := cmd.Flags().GetInt("ms")
			attempt.ResponseMs = &ms
		}

		a, err := openApp(cmd, 0)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Study.RecordAttempt(cmd.Context(), attempt)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		verdict := theme.Incorrect.Render("incorrect")
		if correct {
			verdict = theme.Correct.Render("correct")
		}
		fmt.Fprintf(out, "%s %s (quality %d)\n", args[0], verdict, res.Quality)
		fmt.Fprintf(out, "%s %d day(s), next review %s\n",
			theme.Label.Render("interval"), res.State.IntervalDays, res.State.NextReviewAt.Local().Format("2006-01-02 15:04"))
		fmt.Fprintf(out, "%s %.2f  %s %d  %s %.2f\n",
			theme.Label.Render("ease"), res.State.EaseFactor,
			theme.Label.Render("level"), res.State.Level,
			theme.Label.Render("difficulty"), res.State.Difficulty)
		fmt.Fprintf(out, "%s ~%d day(s)\n", theme.Label.Render("remembered for"), res.ForgetInDays)
		if res.TrainingScheduled {
			fmt.Fprintln(out, theme.Hint.Render("retraining recall model..."))
		}
		return nil
	},
}

func init() {
	answerCmd.Flags().String("user", "", "Learner ID")
	answerCmd.Flags().Bool("correct", false, "Whether the answer was correct")
	answerCmd.Flags().Int("ms", 0, "Response time in milliseconds")
}
