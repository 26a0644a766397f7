package server

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// handleEventStream upgrades the connection and forwards live pool events
// as JSON messages until either side hangs up. Events recorded before the
// subscription are not replayed; /api/v1/events serves history.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	openWebsockets.Inc()
	defer openWebsockets.Dec()

	ch, cancel := s.broker.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	// The peer never sends data; reading only detects the close.
	go func() {
		defer stop()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.log.Debug("event stream opened", zap.String("remote", conn.RemoteAddr().String()))
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				s.log.Debug("event stream closed", zap.Error(err))
				return
			}
			eventsStreamed.Inc()
		}
	}
}
