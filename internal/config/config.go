// Package config loads application settings from a TOML file and the
// environment. Environment variables win over the file; flags applied by
// the caller win over both.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig is the on-disk TOML layout. Pointer fields distinguish an
// unset key from a zero value.
type FileConfig struct {
	User    *string     `toml:"user"`
	Session SessionFile `toml:"session"`
	Camera  CameraFile  `toml:"camera"`
	Storage StorageFile `toml:"storage"`
	Blob    BlobFile    `toml:"blob"`
	AMQP    AMQPFile    `toml:"amqp"`
	Redis   RedisFile   `toml:"redis"`
	Metrics MetricsFile `toml:"metrics"`
	Log     LogFile     `toml:"log"`
}

type SessionFile struct {
	Mode          *string `toml:"mode"`
	Questions     *int    `toml:"questions"`
	FetchAttempts *int    `toml:"fetch-attempts"`
}

type CameraFile struct {
	Device *string `toml:"device"`
	Format *string `toml:"format"`
	Still  *string `toml:"still"`
	FFmpeg *string `toml:"ffmpeg"`
}

type StorageFile struct {
	DB            *string `toml:"db"`
	KeepSnapshots *int    `toml:"keep-snapshots"`
}

type BlobFile struct {
	Backend   *string `toml:"backend"`
	Dir       *string `toml:"dir"`
	Endpoint  *string `toml:"endpoint"`
	AccessKey *string `toml:"access-key"`
	SecretKey *string `toml:"secret-key"`
	Bucket    *string `toml:"bucket"`
	Region    *string `toml:"region"`
	UseSSL    *bool   `toml:"use-ssl"`
}

type AMQPFile struct {
	URI      *string `toml:"uri"`
	Exchange *string `toml:"exchange"`
}

type RedisFile struct {
	Addr     *string `toml:"addr"`
	Password *string `toml:"password"`
	DB       *int    `toml:"db"`
	TTL      *string `toml:"ttl"`
}

type MetricsFile struct {
	Addr *string `toml:"addr"`
}

type LogFile struct {
	Level *string `toml:"level"`
}

// LoadFile reads a TOML config from path. A missing file is not an error.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("stat config: %w", err)
	}
	var fc FileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return FileConfig{}, fmt.Errorf("decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return fc, nil
}

// Blob backends.
const (
	BlobFS    = "fs"
	BlobMinio = "minio"
)

// Config is the resolved application configuration.
type Config struct {
	UserID  string
	Session Session
	Camera  Camera
	Storage Storage
	Blob    Blob
	AMQP    AMQP
	Redis   Redis
	Metrics Metrics
	Log     Log
}

type Session struct {
	Mode          string
	Questions     int
	FetchAttempts int
}

// Camera selects the capture device. Still takes precedence over Device.
type Camera struct {
	Device string
	Format string
	Still  string
	FFmpeg string
}

type Storage struct {
	DB            string
	KeepSnapshots int
}

type Blob struct {
	Backend   string
	Dir       string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// AMQP publishing is disabled when URI is empty.
type AMQP struct {
	URI      string
	Exchange string
}

// Redis live status is disabled when Addr is empty.
type Redis struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Metrics are served on Addr at /metrics; empty disables the listener.
type Metrics struct {
	Addr string
}

type Log struct {
	Level string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		UserID: defaultUser(),
		Session: Session{
			Mode:          "curriculum",
			Questions:     5,
			FetchAttempts: 3,
		},
		Storage: Storage{KeepSnapshots: 200},
		Blob: Blob{
			Backend: BlobFS,
			Bucket:  "quizwatch-evidence",
		},
		AMQP:  AMQP{Exchange: "quizwatch"},
		Redis: Redis{TTL: 3 * time.Minute},
		Log:   Log{Level: "warn"},
	}
}

func defaultUser() string {
	for _, k := range []string{"USER", "USERNAME"} {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return "learner"
}

// DotEnvPath is the optional KEY=VALUE file read alongside the process
// environment.
const DotEnvPath = ".env"

// Load resolves the configuration: defaults, then the file at path, then
// QUIZWATCH_* variables from the environment or DotEnvPath.
func Load(path string) (Config, error) {
	return load(path, DotEnvPath)
}

func load(path, envFile string) (Config, error) {
	fc, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	vals, err := readDotEnv(envFile)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := cfg.merge(fc); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(layered(os.Getenv, vals)); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) merge(fc FileConfig) error {
	setString(&c.UserID, fc.User)

	setString(&c.Session.Mode, fc.Session.Mode)
	setInt(&c.Session.Questions, fc.Session.Questions)
	setInt(&c.Session.FetchAttempts, fc.Session.FetchAttempts)

	setString(&c.Camera.Device, fc.Camera.Device)
	setString(&c.Camera.Format, fc.Camera.Format)
	setString(&c.Camera.Still, fc.Camera.Still)
	setString(&c.Camera.FFmpeg, fc.Camera.FFmpeg)

	setString(&c.Storage.DB, fc.Storage.DB)
	setInt(&c.Storage.KeepSnapshots, fc.Storage.KeepSnapshots)

	setString(&c.Blob.Backend, fc.Blob.Backend)
	setString(&c.Blob.Dir, fc.Blob.Dir)
	setString(&c.Blob.Endpoint, fc.Blob.Endpoint)
	setString(&c.Blob.AccessKey, fc.Blob.AccessKey)
	setString(&c.Blob.SecretKey, fc.Blob.SecretKey)
	setString(&c.Blob.Bucket, fc.Blob.Bucket)
	setString(&c.Blob.Region, fc.Blob.Region)
	setBool(&c.Blob.UseSSL, fc.Blob.UseSSL)

	setString(&c.AMQP.URI, fc.AMQP.URI)
	setString(&c.AMQP.Exchange, fc.AMQP.Exchange)

	setString(&c.Redis.Addr, fc.Redis.Addr)
	setString(&c.Redis.Password, fc.Redis.Password)
	setInt(&c.Redis.DB, fc.Redis.DB)
	if fc.Redis.TTL != nil {
		d, err := time.ParseDuration(*fc.Redis.TTL)
		if err != nil {
			return fmt.Errorf("redis ttl: %w", err)
		}
		c.Redis.TTL = d
	}

	setString(&c.Metrics.Addr, fc.Metrics.Addr)
	setString(&c.Log.Level, fc.Log.Level)
	return nil
}

// Validate checks values a session cannot start without.
func (c Config) Validate() error {
	switch c.Session.Mode {
	case "curriculum", "discovery", "exam":
	default:
		return fmt.Errorf("session mode %q: want curriculum, discovery or exam", c.Session.Mode)
	}
	if c.Session.FetchAttempts < 1 {
		return fmt.Errorf("session fetch-attempts must be at least 1")
	}
	switch c.Blob.Backend {
	case BlobFS:
	case BlobMinio:
		if c.Blob.Endpoint == "" {
			return fmt.Errorf("blob backend minio needs an endpoint")
		}
	default:
		return fmt.Errorf("blob backend %q: want fs or minio", c.Blob.Backend)
	}
	if c.UserID == "" {
		return fmt.Errorf("user must not be empty")
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
