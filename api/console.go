package api

import (
	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"

	"github.com/npclabs/mc-server-wrapper/log"
)

// ConsoleStream streams the server's console lines over a WebSocket.
// The stream is read-only; commands go through POST /command so they
// pass the bridge lock like everything else.
func (s *Server) ConsoleStream(c *gin.Context) {
	log.MarkHijacked(c)

	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("console websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// CloseRead handles control frames and cancels the context when the
	// client goes away.
	ctx := conn.CloseRead(c.Request.Context())

	lines, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				// Hub shut down; the wrapper is going away.
				return
			}
			if err := conn.Write(ctx, websocket.MessageText, []byte(line)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
