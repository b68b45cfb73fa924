package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the current learner's mastery scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		s, cfg, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		if !yes {
			fmt.Printf("This deletes every mastery score for %s. Re-run with --yes to confirm.\n", cfg.UserID)
			return nil
		}

		n, err := s.MasteryRepo().DeleteUser(cmd.Context(), cfg.UserID)
		if err != nil {
			return fmt.Errorf("reset mastery: %w", err)
		}
		fmt.Printf("Deleted %d mastery scores for %s.\n", n, cfg.UserID)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
}
