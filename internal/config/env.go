package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// readDotEnv parses a .env file. A missing file yields no values.
func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	vals, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return vals, nil
}

// layered prefers getenv and falls back to vals, so the real environment
// always wins over a .env file.
func layered(getenv func(string) string, vals map[string]string) func(string) string {
	return func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return vals[key]
	}
}

// applyEnv overrides c from QUIZWATCH_* variables read through getenv.
func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	var firstErr error
	num := func(key string, dst *int) {
		v := getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", key, err)
			}
			return
		}
		*dst = n
	}
	flag := func(key string, dst *bool) {
		v := getenv(key)
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", key, err)
			}
			return
		}
		*dst = b
	}

	str("QUIZWATCH_USER", &c.UserID)

	str("QUIZWATCH_MODE", &c.Session.Mode)
	num("QUIZWATCH_QUESTIONS", &c.Session.Questions)

	str("QUIZWATCH_CAMERA", &c.Camera.Device)
	str("QUIZWATCH_CAMERA_STILL", &c.Camera.Still)
	str("QUIZWATCH_FFMPEG", &c.Camera.FFmpeg)

	str("QUIZWATCH_DB", &c.Storage.DB)

	str("QUIZWATCH_BLOB_BACKEND", &c.Blob.Backend)
	str("QUIZWATCH_BLOB_DIR", &c.Blob.Dir)
	str("QUIZWATCH_MINIO_ENDPOINT", &c.Blob.Endpoint)
	str("QUIZWATCH_MINIO_ACCESS_KEY", &c.Blob.AccessKey)
	str("QUIZWATCH_MINIO_SECRET_KEY", &c.Blob.SecretKey)
	str("QUIZWATCH_MINIO_BUCKET", &c.Blob.Bucket)
	flag("QUIZWATCH_MINIO_USE_SSL", &c.Blob.UseSSL)

	str("QUIZWATCH_AMQP_URI", &c.AMQP.URI)
	str("QUIZWATCH_AMQP_EXCHANGE", &c.AMQP.Exchange)

	str("QUIZWATCH_REDIS_ADDR", &c.Redis.Addr)
	str("QUIZWATCH_REDIS_PASSWORD", &c.Redis.Password)
	num("QUIZWATCH_REDIS_DB", &c.Redis.DB)
	if v := getenv("QUIZWATCH_REDIS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("QUIZWATCH_REDIS_TTL: %w", err)
		} else if err == nil {
			c.Redis.TTL = d
		}
	}

	str("QUIZWATCH_METRICS_ADDR", &c.Metrics.Addr)
	str("QUIZWATCH_LOG_LEVEL", &c.Log.Level)
	return firstErr
}
