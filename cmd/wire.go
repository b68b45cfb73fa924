package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/abhisek/quizwatch/internal/attention"
	"github.com/abhisek/quizwatch/internal/blob"
	"github.com/abhisek/quizwatch/internal/camera"
	"github.com/abhisek/quizwatch/internal/config"
	"github.com/abhisek/quizwatch/internal/events"
	"github.com/abhisek/quizwatch/internal/livestatus"
	"github.com/abhisek/quizwatch/internal/llm"
	"github.com/abhisek/quizwatch/internal/logging"
	"github.com/abhisek/quizwatch/internal/mastery"
	"github.com/abhisek/quizwatch/internal/metrics"
	"github.com/abhisek/quizwatch/internal/persist"
	"github.com/abhisek/quizwatch/internal/quiz"
	"github.com/abhisek/quizwatch/internal/session"
	"github.com/abhisek/quizwatch/internal/store"
)

// services holds everything a session needs. Close releases them in
// reverse order of construction.
type services struct {
	cfg      config.Config
	log      *slog.Logger
	store    *store.Store
	persist  *persist.Service
	camera   *camera.Resource
	provider llm.Provider
	engine   *session.Engine
	closers  []io.Closer
}

func (s *services) Close() {
	if s.engine != nil {
		s.engine.Close()
	}
	log := s.log
	if log == nil {
		log = slog.Default()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			log.Warn("close failed", "err", err)
		}
	}
}

// buildServices opens storage, connects the optional broker and board,
// and builds the session engine. The TUI writes to the terminal, so logs
// go to a file under the data directory.
func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	s := &services{cfg: cfg}

	dataDir, err := store.DataDir()
	if err != nil {
		return nil, err
	}
	logFile, err := logging.OpenFile(dataDir)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, logFile)
	s.log, err = logging.New(logFile, cfg.Log.Level)
	if err != nil {
		s.Close()
		return nil, err
	}
	slog.SetDefault(s.log)

	if err := s.open(ctx, dataDir); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *services) open(ctx context.Context, dataDir string) error {
	cfg := s.cfg

	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	s.store, err = store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	s.closers = append(s.closers, s.store)

	blobs, err := openBlobs(ctx, cfg.Blob, dataDir)
	if err != nil {
		return err
	}

	var pub events.Publisher = events.Nop{}
	if cfg.AMQP.URI != "" {
		p, err := events.NewAMQPPublisher(events.AMQPConfig{URI: cfg.AMQP.URI, Exchange: cfg.AMQP.Exchange})
		if err != nil {
			s.log.Warn("event publishing disabled", "err", err)
		} else {
			pub = p
		}
	}

	var board livestatus.Board = livestatus.Nop{}
	if cfg.Redis.Addr != "" {
		b, err := livestatus.NewRedisBoard(ctx, livestatus.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			s.log.Warn("live status disabled", "err", err)
		} else {
			board = b
		}
	}

	s.persist, err = persist.New(persist.Config{
		Store:         s.store,
		Blobs:         blobs,
		Publisher:     pub,
		Board:         board,
		Logger:        s.log,
		KeepSnapshots: cfg.Storage.KeepSnapshots,
	})
	if err != nil {
		return err
	}
	s.closers = append(s.closers, s.persist)

	s.camera = camera.NewResource(cameraDevice(cfg.Camera))

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		srv, err := m.Listen(cfg.Metrics.Addr)
		if err != nil {
			s.log.Warn("metrics endpoint disabled", "err", err)
		} else {
			s.closers = append(s.closers, srv)
		}
	}

	s.provider, err = llm.NewProviderFromEnv(ctx, s.store.EventRepo())
	if err != nil {
		s.log.Warn("LLM provider not configured", "err", err)
		s.provider = nil
	}

	ecfg := session.Config{
		Persistence:   s.persist,
		Journal:       s.persist,
		Ledger:        mastery.NewLedger(s.persist, cfg.UserID),
		Camera:        s.camera,
		Logger:        s.log,
		Metrics:       m,
		FetchAttempts: cfg.Session.FetchAttempts,
	}
	if s.provider != nil {
		ecfg.Content = quiz.New(s.provider, quiz.DefaultConfig())
		ecfg.Analyzer = attention.NewLLMAnalyzer(s.provider, attention.DefaultAnalyzerConfig())
	}
	s.engine = session.New(ecfg)
	return nil
}

func openBlobs(ctx context.Context, cfg config.Blob, dataDir string) (blob.Store, error) {
	switch cfg.Backend {
	case config.BlobMinio:
		st, err := blob.NewMinioStore(ctx, blob.MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("open evidence bucket: %w", err)
		}
		return st, nil
	default:
		dir := cfg.Dir
		if dir == "" {
			dir = filepath.Join(dataDir, "evidence")
		}
		st, err := blob.NewFSStore(dir)
		if err != nil {
			return nil, fmt.Errorf("open evidence dir: %w", err)
		}
		return st, nil
	}
}

// cameraDevice picks the capture source. A still image wins over a live
// device; with neither configured the camera is unavailable.
func cameraDevice(cfg config.Camera) camera.Device {
	switch {
	case cfg.Still != "":
		return camera.FileDevice{Path: cfg.Still}
	case cfg.Device != "":
		return camera.FFmpegDevice{Input: cfg.Device, Format: cfg.Format, Binary: cfg.FFmpeg}
	default:
		return camera.Unavailable{}
	}
}
