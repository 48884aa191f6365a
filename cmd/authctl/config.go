package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/mode"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const envPrefix = "AUTHCTL_"

type cliConfig struct {
	TenantID string `yaml:"tenant_id"`
	BaseURL  string `yaml:"base_url"`
	Origin   string `yaml:"origin"`
	Mode     string `yaml:"mode"`
	Profile  string `yaml:"profile"`
	Database string `yaml:"database"`
	Timeout  string `yaml:"timeout"`
	LogLevel string `yaml:"log_level"`

	Verify struct {
		Method        string `yaml:"method"`
		PublicKeyFile string `yaml:"public_key_file"`
		Issuer        string `yaml:"issuer"`
		Audience      string `yaml:"audience"`
	} `yaml:"verify"`
}

// loadConfig reads path. A missing file yields the defaults so that a
// config made only of environment variables works.
func loadConfig(path string) (*cliConfig, error) {
	c := &cliConfig{}
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if c.Origin == "" {
		c.Origin = "http://localhost/"
	}
	if c.Profile == "" {
		c.Profile = "default"
	}
	if c.Database == "" {
		c.Database = defaultDatabasePath()
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	return c, nil
}

// applyEnv overrides fields from AUTHCTL_* variables.
func (c *cliConfig) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(envPrefix + key)); v != "" {
			*dst = v
		}
	}
	set(&c.TenantID, "TENANT_ID")
	set(&c.BaseURL, "BASE_URL")
	set(&c.Origin, "ORIGIN")
	set(&c.Mode, "MODE")
	set(&c.Profile, "PROFILE")
	set(&c.Database, "DATABASE")
	set(&c.Timeout, "TIMEOUT")
	set(&c.LogLevel, "LOG_LEVEL")
	set(&c.Verify.Method, "VERIFY_METHOD")
	set(&c.Verify.PublicKeyFile, "VERIFY_PUBLIC_KEY_FILE")
	set(&c.Verify.Issuer, "VERIFY_ISSUER")
}

func (c *cliConfig) clientConfig() (goAuthClient.Config, error) {
	cfg := goAuthClient.DefaultConfig()
	cfg.TenantID = c.TenantID
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}
	if c.Mode != "" {
		switch m := strings.ToLower(c.Mode); m {
		case string(mode.Test), string(mode.Live):
			cfg.Mode = mode.Parse(m)
		default:
			return cfg, fmt.Errorf("invalid mode %q", c.Mode)
		}
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
		}
		cfg.HTTP.Timeout = d
	}
	return cfg, cfg.Validate()
}

// verifier returns nil when no verification key is configured.
func (c *cliConfig) verifier() (*jwt.Verifier, error) {
	if c.Verify.PublicKeyFile == "" {
		return nil, nil
	}
	key, err := os.ReadFile(c.Verify.PublicKeyFile)
	if err != nil {
		return nil, fmt.Errorf("read verification key: %w", err)
	}
	return jwt.NewVerifier(jwt.Config{
		SigningMethod: jwt.SigningMethod(strings.ToLower(c.Verify.Method)),
		PublicKey:     key,
		Issuer:        c.Verify.Issuer,
		Audience:      c.Verify.Audience,
	})
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "authctl.db"
	}
	return filepath.Join(dir, "authctl", "profiles.db")
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.WarnLevel
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	zcfg.DisableStacktrace = true
	l, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
