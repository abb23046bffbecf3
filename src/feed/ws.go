package feed

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// outboundFrame is the wire envelope for every frame pushed to a
// websocket subscriber, grounded on realmfikri-Limitless/server/server.go's
// outboundMessage.
type outboundFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Server upgrades plain HTTP connections to websockets and relays a
// Broadcaster's match and book hubs to each connected client until it
// disconnects. It runs as its own net/http server rather than inside the
// fiber app because fiber's fasthttp transport does not speak
// net/http.Hijacker, which gorilla/websocket's Upgrader requires.
type Server struct {
	broadcaster *Broadcaster
	upgrader    websocket.Upgrader
}

// NewServer constructs a websocket relay for broadcaster.
func NewServer(broadcaster *Broadcaster) *Server {
	return &Server{
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the http.Handler to mount at /api/v1/stream/:symbol.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serve)
}

// symbolFromPath extracts the trailing path segment of a request like
// /api/v1/stream/AAPL. An empty segment subscribes to every symbol.
func symbolFromPath(path string) string {
	trimmed := strings.TrimSuffix(path, "/")
	idx := strings.LastIndexByte(trimmed, '/')
	if idx < 0 {
		return ""
	}
	segment := trimmed[idx+1:]
	if segment == "stream" {
		return ""
	}
	return segment
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	symbol := symbolFromPath(r.URL.Path)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("feed: websocket upgrade failed")
		return
	}
	defer conn.Close()

	matchSub := s.broadcaster.Matches.Subscribe(64)
	bookSub := s.broadcaster.Books.Subscribe(64)
	defer s.broadcaster.Matches.Unsubscribe(matchSub)
	defer s.broadcaster.Books.Unsubscribe(bookSub)

	done := make(chan struct{})
	go s.drainReads(conn, done)

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case m := <-matchSub.C():
			if symbol != "" && m.Symbol != symbol {
				continue
			}
			if err := conn.WriteJSON(outboundFrame{Type: "match", Data: m}); err != nil {
				return
			}
		case b := <-bookSub.C():
			if symbol != "" && b.Symbol != symbol {
				continue
			}
			if err := conn.WriteJSON(outboundFrame{Type: "book", Data: b}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drainReads discards client frames (this feed is server-push only) and
// closes done the moment the client disconnects.
func (s *Server) drainReads(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
