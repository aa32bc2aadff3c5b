package ws

import (
	"log"
	"net/http"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
)

var (
	// Server is the global Socket.IO server instance
	Server *socketio.Server
)

// InitServer initializes the Socket.IO server
func InitServer() error {
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&polling.Transport{
				CheckOrigin: func(r *http.Request) bool {
					// Allow all origins for now (can be restricted later)
					return true
				},
			},
			&websocket.Transport{
				CheckOrigin: func(r *http.Request) bool {
					return true
				},
			},
		},
	})

	server.OnConnect("/", func(s socketio.Conn) error {
		// JWT is already validated during the handshake
		log.Printf("[WebSocket] Client connected: %s", s.ID())

		s.Emit("connected", map[string]interface{}{
			"ok": true,
		})

		return nil
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Printf("[WebSocket] Client disconnected: %s, reason: %s", s.ID(), reason)
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		log.Printf("[WebSocket] Error for client %s: %v", s.ID(), e)
	})

	registerEventHandlers(server)

	go func() {
		if err := server.Serve(); err != nil {
			log.Fatalf("[WebSocket] Server error: %v", err)
		}
	}()

	Server = server
	log.Println("[WebSocket] Socket.IO server initialized")
	return nil
}

// registerEventHandlers registers all Socket.IO event handlers
func registerEventHandlers(server *socketio.Server) {
	server.OnEvent("/", "request:domains", handleRequestDomains)

	log.Println("[WebSocket] Event handlers registered")
}

// BroadcastToAll broadcasts a message to all connected clients
func BroadcastToAll(event string, data interface{}) {
	if Server != nil {
		Server.BroadcastToNamespace("/", event, data)
	}
}
