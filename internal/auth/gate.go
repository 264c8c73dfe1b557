// Package auth implements the two access gates: the login gate backing the
// dashboard sign-in form, and the transport-level Basic-Auth middleware.
// Both compare against a single config-supplied credential pair. This is a
// UX gate over a static dataset, not real authentication; it offers no
// confidentiality or integrity guarantee.
package auth

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/market-dashboard/internal/session"
)

// ErrInvalidCredentials is the generic mismatch error. It never says which
// field was wrong.
var ErrInvalidCredentials = eris.New("auth: invalid username or password")

// ErrRateLimited is returned when a client exceeds the login attempt budget.
var ErrRateLimited = eris.New("auth: too many login attempts")

// Credentials is the single reference pair both gates check against.
// Supplied via config/env, never embedded in handler code.
type Credentials struct {
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
}

// Match compares the pair in constant time.
func (c Credentials) Match(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	return userOK && passOK
}

// Gate checks submitted credentials and manages the persisted session
// marker. Login applies a short fixed delay before resolving (perceived
// responsiveness, carried over from the source UI) and a per-client rate
// limit on attempts.
type Gate struct {
	creds    Credentials
	sessions session.Store
	delay    time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	limit rate.Limit
	burst int
}

// NewGate creates a login gate. delay may be zero (tests).
func NewGate(creds Credentials, sessions session.Store, delay time.Duration) *Gate {
	return &Gate{
		creds:    creds,
		sessions: sessions,
		delay:    delay,
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(2 * time.Second),
		burst:    5,
	}
}

// limiterFor returns the attempt limiter for one client key (remote IP),
// creating it on first sight.
func (g *Gate) limiterFor(key string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.limiters[key]
	if !ok {
		l = rate.NewLimiter(g.limit, g.burst)
		g.limiters[key] = l
	}
	return l
}

// Login checks the submitted pair. On match it persists a session marker and
// returns its token; on mismatch it returns ErrInvalidCredentials. clientKey
// scopes the rate limit (normally the remote IP).
func (g *Gate) Login(ctx context.Context, clientKey, username, password string) (*session.Session, error) {
	if !g.limiterFor(clientKey).Allow() {
		zap.L().Warn("login rate limited", zap.String("client", clientKey))
		return nil, ErrRateLimited
	}

	if g.delay > 0 {
		t := time.NewTimer(g.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, eris.Wrap(ctx.Err(), "auth: login cancelled")
		}
	}

	if !g.creds.Match(username, password) {
		zap.L().Info("login rejected", zap.String("client", clientKey))
		return nil, ErrInvalidCredentials
	}

	sess, err := g.sessions.Create(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "auth: create session")
	}
	zap.L().Info("login accepted", zap.String("client", clientKey))
	return sess, nil
}

// Logout removes the persisted marker. Unknown tokens are a no-op.
func (g *Gate) Logout(ctx context.Context, token string) error {
	return g.sessions.Delete(ctx, token)
}

// Check reports whether token names a live session marker.
func (g *Gate) Check(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	sess, err := g.sessions.Get(ctx, token)
	if err != nil {
		return false, err
	}
	return sess != nil, nil
}
