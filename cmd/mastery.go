package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizwatch/internal/mastery"
)

var masteryCmd = &cobra.Command{
	Use:   "mastery",
	Short: "Show mastery scores for the current learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cfg, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		scores, err := s.MasteryRepo().List(cmd.Context(), cfg.UserID)
		if err != nil {
			return fmt.Errorf("list mastery: %w", err)
		}
		if len(scores) == 0 {
			fmt.Printf("No mastery recorded for %s.\n", cfg.UserID)
			return nil
		}

		fmt.Printf("%-32s  %5s  %-10s  %s\n", "Subject", "Score", "Band", "Updated")
		fmt.Println(strings.Repeat("─", 72))
		for _, sc := range scores {
			band := mastery.BandFor(sc.Score)
			fmt.Printf("%-32s  %5d  %s %-8s  %s\n",
				truncate(sc.SubjectKey, 32), sc.Score, band.Icon(), band,
				sc.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}
