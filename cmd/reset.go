package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner data",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser(cmd)
		if err != nil {
			return err
		}
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("this deletes all review history of %s; rerun with --yes", user)
		}

		a, err := openApp(cmd, 0)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Study.DeleteUser(cmd.Context(), user); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted all data of %s\n", user)
		return nil
	},
}

func init() {
	resetCmd.Flags().String("user", "", "Learner ID")
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}
