package api

import (
	"context"
	"net/http"
	"sync"

	"TR_telegram_taskbot/internal/service"
	"TR_telegram_taskbot/pkg/auth"
	"TR_telegram_taskbot/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// CompletionFeed fans the task-completion event stream out to every connected
// admin websocket. Slow or dead connections are dropped, never waited on.
type CompletionFeed struct {
	verification *service.VerificationService
	a            *auth.TelegramAuth

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewCompletionFeed(handler *gin.RouterGroup, verification *service.VerificationService, a *auth.TelegramAuth) *CompletionFeed {
	f := &CompletionFeed{
		verification: verification,
		a:            a,
		conns:        make(map[*websocket.Conn]struct{}),
	}

	h := handler.Group("/admin")
	h.Use(a.TelegramAuthMiddleware())
	h.Use(a.AdminOnly())
	h.GET("/ws/completions", f.handleWebSocket)

	return f
}

// Run pumps completion events to subscribers until the context is cancelled.
func (f *CompletionFeed) Run(ctx context.Context) {
	log := logger.Logger()

	for {
		select {
		case event := <-f.verification.Events():
			out, err := json.Marshal(event)
			if err != nil {
				log.Error("failed to marshal completion event", zap.Error(err))
				continue
			}
			f.broadcast(out)

		case <-ctx.Done():
			f.closeAll()
			return
		}
	}
}

func (f *CompletionFeed) handleWebSocket(c *gin.Context) {
	log := logger.Logger()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	f.mu.Lock()
	f.conns[conn] = struct{}{}
	f.mu.Unlock()

	// Reader loop exists only to notice the peer going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				f.drop(conn)
				return
			}
		}
	}()
}

func (f *CompletionFeed) broadcast(message []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for conn := range f.conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			delete(f.conns, conn)
			conn.Close()
		}
	}
}

func (f *CompletionFeed) drop(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.conns[conn]; ok {
		delete(f.conns, conn)
		conn.Close()
	}
}

func (f *CompletionFeed) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for conn := range f.conns {
		conn.Close()
	}
	f.conns = make(map[*websocket.Conn]struct{})
}
