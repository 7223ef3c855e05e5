package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/vango-dev/escaper/internal/errors"
	"github.com/vango-dev/escaper/pkg/escape"
	"github.com/vango-dev/escaper/pkg/middleware"
	"github.com/vango-dev/escaper/pkg/strarray"
	"github.com/vango-dev/escaper/pkg/strbuf"
)

type escapeRequest struct {
	Context string `json:"context"`
	Input   string `json:"input"`
}

type unescapeRequest struct {
	Context    string `json:"context,omitempty"`
	Introducer string `json:"introducer,omitempty"`
	Input      string `json:"input"`
}

type validateRequest struct {
	Input string `json:"input"`
}

type splitRequest struct {
	Input     string `json:"input"`
	Separator string `json:"separator"`
	Max       int    `json:"max,omitempty"`
}

type outputResponse struct {
	Output string `json:"output"`
}

type validateResponse struct {
	Output   string `json:"output"`
	Accepted bool   `json:"accepted"`
}

type splitResponse struct {
	Entries []string `json:"entries"`
}

// run executes fn as op through the middleware chain.
func (s *Server) run(ctx context.Context, op middleware.Op, fn func(ctx context.Context) (string, error)) (string, error) {
	h := middleware.Chain(func(ctx context.Context, _ middleware.Op) (string, error) {
		return fn(ctx)
	}, s.mws...)
	return h(ctx, op)
}

// newBuffer returns a per-request output buffer sized from the configuration.
func (s *Server) newBuffer() *strbuf.Buffer {
	b := strbuf.New(s.cfg.Buffer.InitialSize)
	b.SetLimit(s.cfg.Buffer.MaxSize)
	return b
}

// escape escapes in for the named context into a fresh buffer.
func (s *Server) escape(ctx context.Context, name, in string) (string, error) {
	c, err := escape.ParseContext(name)
	if err != nil {
		return "", err
	}
	op := middleware.Op{Name: "escape", Context: c.String(), Input: in}
	return s.run(ctx, op, func(context.Context) (string, error) {
		b := s.newBuffer()
		if err := s.engine.EscapeTo(b, c, in); err != nil {
			return "", err
		}
		return b.String(), nil
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEscape(w http.ResponseWriter, r *http.Request) {
	var req escapeRequest
	if !s.decode(w, r, &req) {
		return
	}
	out, err := s.escape(r.Context(), req.Context, req.Input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outputResponse{Output: out})
}

func (s *Server) handleUnescape(w http.ResponseWriter, r *http.Request) {
	var req unescapeRequest
	if !s.decode(w, r, &req) {
		return
	}

	op := middleware.Op{Name: "unescape", Context: req.Context, Input: req.Input}
	out, err := s.run(r.Context(), op, func(context.Context) (string, error) {
		switch {
		case req.Context != "" && req.Introducer != "":
			return "", errors.New(errors.CodeInvalidArg).WithDetail("context and introducer are mutually exclusive")
		case req.Introducer != "":
			return escape.UnescapeIntroducer(req.Introducer, req.Input)
		default:
			return escape.UnescapeNamed(req.Context, req.Input)
		}
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outputResponse{Output: out})
}

func (s *Server) handleValidate(css bool) http.HandlerFunc {
	name := "validate_url"
	if css {
		name = "validate_css_url"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateRequest
		if !s.decode(w, r, &req) {
			return
		}

		accepted := s.engine.Policy().HasSecureProtocol(req.Input)
		op := middleware.Op{Name: name, Input: req.Input}
		out, err := s.run(r.Context(), op, func(context.Context) (string, error) {
			if css {
				return s.engine.ValidateCSSURL(req.Input), nil
			}
			return s.engine.ValidateURL(req.Input), nil
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, validateResponse{Output: out, Accepted: accepted})
	}
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if !s.decode(w, r, &req) {
		return
	}

	var entries []string
	op := middleware.Op{Name: "split", Input: req.Input}
	_, err := s.run(r.Context(), op, func(context.Context) (string, error) {
		a, err := strarray.Split(req.Input, req.Separator, req.Max)
		if err != nil {
			return "", err
		}
		entries = a.Entries()
		return a.Join(req.Separator), nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, splitResponse{Entries: entries})
}

// decode reads a JSON body no larger than the configured limit. It writes
// the error response itself and reports whether decoding succeeded.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.writeError(w, errors.New(errors.CodeNoMem).
				WithDetailf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		s.writeError(w, errors.New(errors.CodeInvalidArg).WithDetail("invalid JSON body").Wrap(err))
		return false
	}
	return true
}

// statusOf maps an error code to an HTTP status.
func statusOf(err error) int {
	switch errors.CodeOf(err) {
	case errors.CodeMalformed, errors.CodeInvalidCtx, errors.CodeInvalidArg:
		return http.StatusBadRequest
	case errors.CodeNoMem, errors.CodeCapacity:
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// asError returns the *errors.Error in err's chain, wrapping err if none.
func asError(err error) *errors.Error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e
	}
	return errors.Newf(errors.CategoryIO, "internal error").Wrap(err)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(asError(err).FormatJSON()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
