package session

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/roiboard/roiboard/internal/typeid"
)

// Authenticator resolves the user behind a websocket upgrade request.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// Handler upgrades requests to sessions. Requests without a token get an anonymous session
// that can edit but not save; a token that fails validation is rejected.
func (m *Manager) Handler(authn Authenticator, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var userID string
		if authn != nil && r.URL.Query().Get("token") != "" {
			var err error
			userID, err = authn.Authenticate(r)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			slog.Error("websocket accept", "error", err)
			return
		}

		client := NewClient(m, conn, userID, typeid.NewSessionID(), uuid.New().String())
		if !m.Register(client) {
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}

		ctx := r.Context()
		go client.WritePump(ctx)
		client.ReadPump(ctx)
	}
}
