package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizwatch/internal/app"
	"github.com/abhisek/quizwatch/internal/quiz"
	"github.com/abhisek/quizwatch/internal/screens/home"
	"github.com/abhisek/quizwatch/internal/screens/setup"
	"github.com/abhisek/quizwatch/internal/store"
)

// runApp builds dependencies and launches the TUI. override, when set,
// adjusts the setup defaults after the config is loaded.
func runApp(cmd *cobra.Command, override func(*setup.Defaults)) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	mode, err := quiz.ParseMode(cfg.Session.Mode)
	if err != nil {
		return err
	}

	svc, err := buildServices(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	defaults := setup.Defaults{Mode: mode, Questions: cfg.Session.Questions}
	if override != nil {
		override(&defaults)
	}

	opts := home.Options{
		Engine:     svc.engine,
		CameraName: svc.camera.DeviceName(),
		Defaults:   defaults,
		Scores:     svc.scoreLister(),
		History:    svc.store.EventRepo(),
		UserID:     cfg.UserID,
	}
	if svc.provider == nil {
		opts.Engine = nil
		opts.Notice = "Set an LLM API key to start a session (see quizwatch --help)"
	}

	return app.Run(app.Deps{Engine: svc.engine, UserID: cfg.UserID, Home: opts})
}

func (s *services) scoreLister() func(ctx context.Context) ([]store.MasteryScore, error) {
	repo, user := s.store.MasteryRepo(), s.cfg.UserID
	return func(ctx context.Context) ([]store.MasteryScore, error) {
		return repo.List(ctx, user)
	}
}
