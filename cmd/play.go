package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizwatch/internal/quiz"
	"github.com/abhisek/quizwatch/internal/screens/setup"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the app with session defaults pre-filled",
	RunE: func(cmd *cobra.Command, args []string) error {
		modeFlag, _ := cmd.Flags().GetString("mode")
		topic, _ := cmd.Flags().GetString("topic")
		questions, _ := cmd.Flags().GetInt("questions")

		var mode quiz.Mode
		if modeFlag != "" {
			m, err := quiz.ParseMode(modeFlag)
			if err != nil {
				return fmt.Errorf("--mode: %w", err)
			}
			mode = m
		}

		return runApp(cmd, func(d *setup.Defaults) {
			if mode != "" {
				d.Mode = mode
			}
			if topic != "" {
				d.Topic = topic
			}
			if questions > 0 {
				d.Questions = questions
			}
		})
	},
}

func init() {
	playCmd.Flags().StringP("mode", "m", "", "Session mode: curriculum, discovery or exam")
	playCmd.Flags().StringP("topic", "t", "", "Concept or topic to practice")
	playCmd.Flags().IntP("questions", "n", 0, "Number of questions (1-20)")
}
