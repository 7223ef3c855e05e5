package escape

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/vango-dev/escaper/pkg/strbuf"
)

// Engine escapes with a scheme policy that can be replaced while requests
// are in flight, for example on configuration reload. It is safe for
// concurrent use.
type Engine struct {
	policy atomic.Pointer[Policy]
	logger *slog.Logger
}

// NewEngine creates an engine using p, or the default policy when p is nil.
// A nil logger falls back to slog.Default().
func NewEngine(p *Policy, logger *slog.Logger) *Engine {
	if p == nil {
		p = defaultPolicy
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{logger: logger}
	e.policy.Store(p)
	return e
}

// Policy returns the current policy.
func (e *Engine) Policy() *Policy { return e.policy.Load() }

// SetPolicy swaps the policy. Calls already running keep the old one.
func (e *Engine) SetPolicy(p *Policy) {
	if p == nil {
		p = defaultPolicy
	}
	old := e.policy.Swap(p)
	e.logger.Info("url scheme policy updated",
		"schemes", p.schemes,
		"previous", old.schemes,
	)
}

// Escape resolves c and escapes in under the current policy.
func (e *Engine) Escape(c Context, in string) (string, error) {
	m, err := c.Resolve()
	if err != nil {
		return "", err
	}
	p := e.policy.Load()
	e.logRejected(m, p, in)
	return m.escape(in, p)
}

// EscapeTo is Escape appending to dst.
func (e *Engine) EscapeTo(dst *strbuf.Buffer, c Context, in string) error {
	m, err := c.Resolve()
	if err != nil {
		return err
	}
	p := e.policy.Load()
	e.logRejected(m, p, in)
	return m.escapeTo(dst, in, p)
}

// ValidateURL is Policy.ValidateURL under the current policy.
func (e *Engine) ValidateURL(in string) string {
	p := e.policy.Load()
	e.logRejected(Mode{kind: URL}, p, in)
	return p.ValidateURL(in)
}

// ValidateCSSURL is Policy.ValidateCSSURL under the current policy.
func (e *Engine) ValidateCSSURL(in string) string {
	p := e.policy.Load()
	e.logRejected(Mode{kind: CSSURL}, p, in)
	return p.ValidateCSSURL(in)
}

func (e *Engine) logRejected(m Mode, p *Policy, in string) {
	if m.kind != URL && m.kind != CSSURL {
		return
	}
	if !e.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	if !p.HasSecureProtocol(in) {
		e.logger.Debug("url rejected", "context", m.String(), "input", Repr(truncate(in, 64)))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
