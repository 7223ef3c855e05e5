package middleware

import "context"

// Op is one escaping operation.
type Op struct {
	// Name identifies the operation, e.g. "escape" or "validate_url".
	Name string

	// Context is the escaping context name, empty when not applicable.
	Context string

	// Input is the untrusted input.
	Input string
}

// Handler executes an Op.
type Handler func(ctx context.Context, op Op) (string, error)

// Middleware wraps a Handler.
type Middleware func(next Handler) Handler

// Chain wraps h with mws. The first middleware is the outermost.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}
