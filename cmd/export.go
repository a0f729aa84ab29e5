package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a learner's data as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser(cmd)
		if err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("out")

		a, err := openApp(cmd, 0)
		if err != nil {
			return err
		}
		defer a.Close()

		exp, err := a.Study.Export(cmd.Context(), user)
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			defer f.Close()
			w = f
		}

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(exp); err != nil {
			return fmt.Errorf("encode export: %w", err)
		}
		if path != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d states and %d attempts to %s\n",
				len(exp.States), len(exp.Attempts), path)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("user", "", "Learner ID")
	exportCmd.Flags().String("out", "", "Write to this file instead of stdout")
}
