package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/escaper/internal/errors"
)

// StreamIdleTimeout closes a stream that sends nothing for this long.
const StreamIdleTimeout = 60 * time.Second

type streamReply struct {
	Output *string         `json:"output,omitempty"`
	Error  json.RawMessage `json:"error,omitempty"`
}

// handleStream escapes one {"context","input"} text frame at a time and
// replies with {"output"} or {"error"} in order.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if s.metrics != nil {
		s.metrics.StreamOpened()
		defer s.metrics.StreamClosed()
	}

	ctx := r.Context()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()

	conn.SetReadLimit(s.cfg.Server.MaxBodyBytes)
	for {
		conn.SetReadDeadline(time.Now().Add(StreamIdleTimeout))

		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Warn("stream read error", "error", err)
			}
			return
		}

		var reply streamReply
		if msgType != websocket.TextMessage {
			reply.Error = errorJSON(errors.New(errors.CodeInvalidArg).WithDetail("stream frames must be text"))
		} else {
			var req escapeRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				reply.Error = errorJSON(errors.New(errors.CodeInvalidArg).WithDetail("invalid JSON frame").Wrap(err))
			} else if out, err := s.escape(ctx, req.Context, req.Input); err != nil {
				reply.Error = errorJSON(err)
			} else {
				reply.Output = &out
			}
		}

		if wt := s.cfg.Server.WriteTimeout.D(); wt > 0 {
			conn.SetWriteDeadline(time.Now().Add(wt))
		}
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Warn("stream write error", "error", err)
			return
		}
	}
}

func errorJSON(err error) json.RawMessage {
	return json.RawMessage(asError(err).FormatJSON())
}
