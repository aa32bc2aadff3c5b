package ws

import (
	"log"
	"net/http"
	"strings"

	socketio "github.com/googollee/go-socket.io"
	"go_domains/internal/auth"
)

// extractToken extracts the JWT token from the handshake request.
// Priority: 1. token query parameter, 2. Authorization header
func extractToken(r *http.Request) string {
	// Socket.IO client: io("url", { auth: { token: "xxx" } })
	// is encoded as ?token=xxx on the handshake request
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	return ""
}

// WrapWithAuth wraps the Socket.IO server with JWT authentication middleware
func WrapWithAuth(server *socketio.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only the handshake needs checking; it is a GET to
		// /socket.io/?EIO=4&transport=polling
		if r.Method == "GET" && strings.Contains(r.URL.Path, "/socket.io/") {
			token := extractToken(r)
			if token == "" {
				log.Printf("[WebSocket] Handshake rejected: no token from %s", r.RemoteAddr)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ParseToken(token)
			if err != nil {
				log.Printf("[WebSocket] Handshake rejected: invalid token from %s: %v", r.RemoteAddr, err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			log.Printf("[WebSocket] Handshake accepted: user=%s (ID=%d)", claims.Username, claims.UID)
		}

		server.ServeHTTP(w, r)
	})
}
