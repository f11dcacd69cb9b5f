package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"wiivcinjector/internal/binstr"
	"wiivcinjector/internal/buildlog"
	"wiivcinjector/internal/config"
	"wiivcinjector/internal/controller"
	"wiivcinjector/internal/exporter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all connections
	},
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub
	// The websocket connection.
	conn *websocket.Conn
	// Buffered channel of outbound messages.
	send chan buildlog.Item
	// Output types the client is subscribed to, used when subscribeAll is off.
	subscriptions map[buildlog.OutputType]bool
	subscribeAll  bool
	mu            sync.RWMutex
}

func (c *Client) wants(t buildlog.OutputType) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscribeAll || c.subscriptions[t]
}

// Hub maintains the set of active clients and broadcasts build output to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan buildlog.Item
	register   chan *Client
	unregister chan *Client
	manager    controller.ImageManager
	mu         sync.Mutex
	// closed when Run returns
	done chan struct{}
}

func NewHub(mgr controller.ImageManager) *Hub {
	return &Hub{
		broadcast:  mgr.GetApiBroadcastChan(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		manager:    mgr,
		done:       make(chan struct{}),
	}
}

// Run pumps broadcast items to clients until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case item := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.wants(item.Type) {
					continue
				}
				select {
				case client.send <- item:
				default:
					// slow consumer
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// WebSocketMessage defines the structure for messages from a client.
type WebSocketMessage struct {
	Action string   `json:"action"` // "subscribe", "unsubscribe", "subscribe_all", "unsubscribe_all"
	Types  []string `json:"types"`
}

func parseOutputType(s string) (buildlog.OutputType, bool) {
	var t buildlog.OutputType
	if err := t.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return t, false
	}
	return t, true
}

// readPump applies subscription changes sent by the client.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		var msg WebSocketMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Debug("websocket read")
			}
			break
		}
		c.mu.Lock()
		switch msg.Action {
		case "subscribe":
			for _, s := range msg.Types {
				if t, ok := parseOutputType(s); ok {
					c.subscriptions[t] = true
				}
			}
		case "unsubscribe":
			for _, s := range msg.Types {
				if t, ok := parseOutputType(s); ok {
					delete(c.subscriptions, t)
				}
			}
		case "subscribe_all":
			c.subscribeAll = true
		case "unsubscribe_all":
			c.subscribeAll = false
		}
		c.mu.Unlock()
	}
}

// writePump pumps items from the hub to the websocket connection.
func (c *Client) writePump() {
	defer c.conn.Close()
	for item := range c.send {
		if err := c.conn.WriteJSON(item); err != nil {
			logrus.WithError(err).Debug("websocket write")
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, controller.ErrNoImage):
		return http.StatusServiceUnavailable
	case errors.Is(err, binstr.ErrOutOfBounds), errors.Is(err, binstr.ErrUnterminatedRun):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// NewRouter builds the REST and websocket routes over mgr.
func NewRouter(mgr controller.ImageManager, hub *Hub) *gin.Engine {
	router := gin.Default()

	api := router.Group("/api/v1")
	{
		api.GET("/image", func(c *gin.Context) {
			info, err := mgr.Info()
			if err != nil {
				c.JSON(errorStatus(err), gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, info)
		})

		api.POST("/read", func(c *gin.Context) {
			var req struct {
				Offset *int64 `json:"offset" binding:"required"`
				Peek   bool   `json:"peek"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			entry, err := mgr.ReadString(*req.Offset, req.Peek)
			if err != nil {
				c.JSON(errorStatus(err), gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, entry)
		})

		api.POST("/table", func(c *gin.Context) {
			var req struct {
				Offset *int64 `json:"offset" binding:"required"`
				Count  int    `json:"count" binding:"required,min=1,max=65536"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			entries, err := mgr.ReadTable(*req.Offset, req.Count)
			if err != nil {
				c.JSON(errorStatus(err), gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, entries)
		})

		// Export the strings extracted so far
		api.GET("/strings", func(c *gin.Context) {
			if _, err := mgr.Info(); err != nil {
				c.JSON(errorStatus(err), gin.H{"error": err.Error()})
				return
			}
			entries := mgr.Entries()
			format := strings.ToLower(strings.TrimSpace(c.Query("format")))
			switch format {
			case "", "json":
				if entries == nil {
					entries = []binstr.Entry{}
				}
				c.JSON(http.StatusOK, entries)
			case "csv":
				c.Header("Content-Disposition", "attachment; filename=strings.csv")
				c.Header("Content-Type", "text/csv; charset=utf-8")
				if err := exporter.WriteCSV(c.Writer, entries); err != nil {
					logrus.WithError(err).Warn("export csv")
				}
			case "xlsx":
				c.Header("Content-Disposition", "attachment; filename=strings.xlsx")
				c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
				if err := exporter.WriteExcel(c.Writer, entries); err != nil {
					logrus.WithError(err).Warn("export xlsx")
				}
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format: " + format})
			}
		})

		api.GET("/ws/clients", func(c *gin.Context) {
			hub.mu.Lock()
			defer hub.mu.Unlock()

			type clientInfo struct {
				RemoteAddr    string   `json:"remote_addr"`
				All           bool     `json:"all"`
				Subscriptions []string `json:"subscriptions"`
			}
			clientsData := []clientInfo{}
			for client := range hub.clients {
				client.mu.RLock()
				subs := make([]string, 0, len(client.subscriptions))
				for t := range client.subscriptions {
					subs = append(subs, t.String())
				}
				clientsData = append(clientsData, clientInfo{
					RemoteAddr:    client.conn.RemoteAddr().String(),
					All:           client.subscribeAll,
					Subscriptions: subs,
				})
				client.mu.RUnlock()
			}
			c.JSON(http.StatusOK, clientsData)
		})
	}

	// WebSocket endpoint streaming build output
	router.GET("/ws/log", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			if !mgr.IsLogDisabled() {
				logrus.WithError(err).Warn("websocket upgrade")
			}
			return
		}
		client := &Client{
			hub:           hub,
			conn:          conn,
			send:          make(chan buildlog.Item, 256),
			subscriptions: make(map[buildlog.OutputType]bool),
			subscribeAll:  true,
		}
		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	})

	return router
}

// StartServer initializes and starts the API server. It returns the http.Server instance.
// setStatus receives the server state; it is called before StartServer returns
// and again if listening fails.
func StartServer(ctx context.Context, mgr controller.ImageManager, setStatus func(string), cfg *config.Config) *http.Server {
	hub := NewHub(mgr)
	go hub.Run(ctx)

	port := cfg.ApiPort
	if port == "" {
		port = "8080" // Default port
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: NewRouter(mgr, hub),
	}

	setStatus("Running on :" + port)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			setStatus("Error: " + err.Error())
			if !mgr.IsLogDisabled() {
				logrus.WithError(err).Error("api server")
			}
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			if !mgr.IsLogDisabled() {
				logrus.WithError(err).Error("api server shutdown")
			}
		}
	}()

	return srv
}
