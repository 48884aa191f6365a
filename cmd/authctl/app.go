package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/browser"
	"github.com/MrEthical07/goAuthClient/internal/profile"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
	envFile    string
	profile    string
	tenantID   string
	baseURL    string
	origin     string
	database   string
	out        string
}

type app struct {
	opts rootOptions

	in     *bufio.Reader
	stdout io.Writer
	stderr io.Writer

	cfg     *cliConfig
	log     *zap.Logger
	profile *profile.Profile
	client  *goAuthClient.Client
}

// open loads configuration and builds the client. Subcommands run after it.
func (a *app) open() error {
	if a.opts.envFile != "" {
		if err := godotenv.Load(a.opts.envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", a.opts.envFile, err)
		}
	}

	cfg, err := loadConfig(a.opts.configPath)
	if err != nil {
		return err
	}
	cfg.applyEnv(os.Getenv)
	if a.opts.profile != "" {
		cfg.Profile = a.opts.profile
	}
	if a.opts.tenantID != "" {
		cfg.TenantID = a.opts.tenantID
	}
	if a.opts.baseURL != "" {
		cfg.BaseURL = a.opts.baseURL
	}
	if a.opts.origin != "" {
		cfg.Origin = a.opts.origin
	}
	if a.opts.database != "" {
		cfg.Database = a.opts.database
	}
	a.cfg = cfg
	a.log = newLogger(cfg.LogLevel)

	clientCfg, err := cfg.clientConfig()
	if err != nil {
		return err
	}
	verifier, err := cfg.verifier()
	if err != nil {
		return err
	}
	location, err := browser.NewStaticLocation(cfg.Origin)
	if err != nil {
		return fmt.Errorf("invalid origin %q: %w", cfg.Origin, err)
	}

	if cfg.Database != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o700); err != nil {
			return fmt.Errorf("create profile directory: %w", err)
		}
	}
	p, err := profile.Open(cfg.Database, cfg.Profile, profile.WithLogger(a.log.Named("profile")))
	if err != nil {
		return err
	}
	a.profile = p

	b := goAuthClient.New().
		WithConfig(clientCfg).
		WithCookieJar(p).
		WithStorage(p).
		WithLocation(location).
		WithNavigator(a.navigator()).
		WithLogger(a.log)
	if verifier != nil {
		b.WithVerifier(verifier)
	}
	client, err := b.Build()
	if err != nil {
		_ = p.Close()
		return err
	}
	a.client = client
	return nil
}

func (a *app) close() {
	if a.profile != nil {
		_ = a.profile.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// navigator prints targets. A terminal has no page to move, so the user
// follows SSO and redirect links by hand.
func (a *app) navigator() browser.Navigator {
	return browser.NavigatorFunc(func(_ context.Context, target string) error {
		_, err := fmt.Fprintf(a.stderr, "open: %s\n", target)
		return err
	})
}

func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.stderr, label)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimSpace(line), nil
}

func (a *app) print(v any, text func(w io.Writer)) error {
	if a.opts.out == "json" {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(a.stdout)
	return nil
}
