// Package profile persists the browser state of a command line session in
// SQLite: the cookie jar and the local storage of one or more named
// profiles.
package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ErrBackend wraps SQLite failures.
var ErrBackend = errors.New("profile backend error")

// Profile is a browser.CookieJar and browser.Storage scoped to one profile
// name inside a SQLite database. Cookies without an expiry are kept until
// removed, since a CLI session spans many processes.
type Profile struct {
	db   *sql.DB
	name string
	now  func() time.Time
	log  *zap.Logger
}

// Option configures a Profile.
type Option func(*Profile)

// WithClock overrides the clock used for cookie expiry.
func WithClock(now func() time.Time) Option {
	return func(p *Profile) { p.now = now }
}

// WithLogger sets the logger for failures the jar interface cannot return.
func WithLogger(l *zap.Logger) Option {
	return func(p *Profile) { p.log = l }
}

// Open opens or creates the database at path and selects profile name.
// Use ":memory:" for a throwaway database.
func Open(path, name string, opts ...Option) (*Profile, error) {
	if name == "" {
		name = "default"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrBackend, path, err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	p := &Profile{db: db, name: name, now: time.Now, log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the selected profile.
func (p *Profile) Name() string { return p.name }

// Close closes the database.
func (p *Profile) Close() error {
	return p.db.Close()
}

func initSchema(db *sql.DB) error {
	if err := initTable(db, "cookies", `
		CREATE TABLE IF NOT EXISTS cookies (
			profile    TEXT NOT NULL,
			name       TEXT NOT NULL,
			domain     TEXT NOT NULL,
			path       TEXT NOT NULL,
			value      TEXT NOT NULL,
			expires    INTEGER NOT NULL,
			secure     INTEGER NOT NULL,
			same_site  INTEGER NOT NULL,
			seq        INTEGER NOT NULL,
			PRIMARY KEY (profile, name, domain, path)
		);`,
	); err != nil {
		return err
	}

	return initTable(db, "storage", `
		CREATE TABLE IF NOT EXISTS storage (
			profile  TEXT NOT NULL,
			key      TEXT NOT NULL,
			value    TEXT NOT NULL,
			PRIMARY KEY (profile, key)
		);`,
	)
}

func initTable(db *sql.DB, name, stmt string) error {
	if _, err := db.Exec(stmt); err != nil {
		return fmt.Errorf("%w: init %q table: %v", ErrBackend, name, err)
	}
	return nil
}

/*
====================================
CookieJar
====================================
*/

// Cookie returns the most recently written live cookie named name.
func (p *Profile) Cookie(name string) (string, bool) {
	now := p.now().Unix()
	var value string
	err := p.db.QueryRow(`
		SELECT value FROM cookies
		WHERE profile = ? AND name = ? AND (expires = 0 OR expires > ?)
		ORDER BY seq DESC LIMIT 1`,
		p.name, name, now,
	).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			p.log.Warn("cookie read failed", zap.String("cookie", name), zap.Error(err))
		}
		return "", false
	}
	return value, true
}

// SetCookie stores cookie under (name, domain, path). A negative MaxAge or
// a past Expires removes it instead.
func (p *Profile) SetCookie(cookie *http.Cookie) error {
	if cookie == nil || cookie.Name == "" {
		return errors.New("profile: cookie name required")
	}

	now := p.now()
	if cookie.MaxAge < 0 || (!cookie.Expires.IsZero() && !cookie.Expires.After(now)) {
		return p.RemoveCookie(cookie.Name, cookie.Domain, cookie.Path)
	}

	var expires int64
	switch {
	case cookie.MaxAge > 0:
		expires = now.Add(time.Duration(cookie.MaxAge) * time.Second).Unix()
	case !cookie.Expires.IsZero():
		expires = cookie.Expires.Unix()
	}

	_, err := p.db.Exec(`
		INSERT INTO cookies (profile, name, domain, path, value, expires, secure, same_site, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM cookies))
		ON CONFLICT (profile, name, domain, path) DO UPDATE SET
			value = excluded.value,
			expires = excluded.expires,
			secure = excluded.secure,
			same_site = excluded.same_site,
			seq = excluded.seq`,
		p.name, cookie.Name, cookie.Domain, cookie.Path, cookie.Value,
		expires, boolInt(cookie.Secure), int(cookie.SameSite),
	)
	if err != nil {
		return fmt.Errorf("%w: set cookie %s: %v", ErrBackend, cookie.Name, err)
	}
	return nil
}

// RemoveCookie deletes the cookie stored under exactly (name, domain, path).
func (p *Profile) RemoveCookie(name, domain, path string) error {
	_, err := p.db.Exec(
		`DELETE FROM cookies WHERE profile = ? AND name = ? AND domain = ? AND path = ?`,
		p.name, name, domain, path,
	)
	if err != nil {
		return fmt.Errorf("%w: remove cookie %s: %v", ErrBackend, name, err)
	}
	return nil
}

// Cookies lists the live cookies of the profile in write order.
func (p *Profile) Cookies(ctx context.Context) ([]*http.Cookie, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT name, domain, path, value, expires, secure, same_site FROM cookies
		WHERE profile = ? AND (expires = 0 OR expires > ?)
		ORDER BY seq`,
		p.name, p.now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list cookies: %v", ErrBackend, err)
	}
	defer rows.Close()

	var out []*http.Cookie
	for rows.Next() {
		var (
			c        http.Cookie
			expires  int64
			secure   int
			sameSite int
		)
		if err := rows.Scan(&c.Name, &c.Domain, &c.Path, &c.Value, &expires, &secure, &sameSite); err != nil {
			return nil, fmt.Errorf("%w: scan cookie: %v", ErrBackend, err)
		}
		if expires > 0 {
			c.Expires = time.Unix(expires, 0)
		}
		c.Secure = secure != 0
		c.SameSite = http.SameSite(sameSite)
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list cookies: %v", ErrBackend, err)
	}
	return out, nil
}

// Purge drops every cookie and storage item of the profile.
func (p *Profile) Purge(ctx context.Context) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrBackend, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cookies WHERE profile = ?`, p.name); err != nil {
		return fmt.Errorf("%w: purge cookies: %v", ErrBackend, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM storage WHERE profile = ?`, p.name); err != nil {
		return fmt.Errorf("%w: purge storage: %v", ErrBackend, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrBackend, err)
	}
	return nil
}

/*
====================================
Storage
====================================
*/

func (p *Profile) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM storage WHERE profile = ? AND key = ?`, p.name, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: get %s: %v", ErrBackend, key, err)
	}
	return value, true, nil
}

func (p *Profile) SetItem(ctx context.Context, key, value string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO storage (profile, key, value) VALUES (?, ?, ?)
		ON CONFLICT (profile, key) DO UPDATE SET value = excluded.value`,
		p.name, key, value,
	)
	if err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrBackend, key, err)
	}
	return nil
}

func (p *Profile) RemoveItem(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM storage WHERE profile = ? AND key = ?`, p.name, key,
	)
	if err != nil {
		return fmt.Errorf("%w: remove %s: %v", ErrBackend, key, err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
