package server

import (
	"net/http"
	"time"

	"sensor-dashboard/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// clientMessage is a reply addressed to a single client.
type clientMessage struct {
	client  *Client
	payload interface{}
}

func (s *DashboardServer) startHub() {
	s.hubOnce.Do(func() {
		go s.handleWebsockets()
	})
}

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				s.drop(client)
			}
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.clientsChanged()
			s.Logger.Info("Client %s connected", client.id)

			// Send the current frames on connect
			client.send <- s.initialState()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				s.drop(client)
			}

		case m := <-s.direct:
			if _, ok := s.clients[m.client]; !ok {
				continue
			}
			select {
			case m.client.send <- m.payload:
			default:
				s.drop(m.client)
			}

		case message := <-s.broadcast:
			s.stateMutex.Lock()
			s.latestState = message
			s.stateMutex.Unlock()

			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					// Client too slow, disconnect to keep the hub moving
					s.Logger.Warning("Dropping slow client %s", client.id)
					s.drop(client)
				}
			}
		}
	}
}

func (s *DashboardServer) drop(client *Client) {
	delete(s.clients, client)
	close(client.send)
	s.clientsChanged()
}

func (s *DashboardServer) clientsChanged() {
	s.connections.Store(int64(len(s.clients)))
	s.Metrics.ClientsConnected(len(s.clients))
}

// -----------------------------------------------------------------------------

// initialState describes what a newly connected client should show.
func (s *DashboardServer) initialState() *models.MDashboardUpdate {
	status := s.Controller.Status()
	return &models.MDashboardUpdate{
		Type:      "INITIAL",
		Interval:  s.Controller.Selected().Name,
		Frames:    s.Controller.Frames(),
		Timestamp: time.Now().Unix(),
		Status:    status,
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues a redraw notification for every connected client.
func (s *DashboardServer) Broadcast(update *models.MDashboardUpdate) {
	if update == nil {
		return
	}
	select {
	case s.broadcast <- update:
	case <-s.done:
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan interface{}, 256),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleCommand applies one client command and replies to that client only.
func (s *DashboardServer) HandleCommand(client *Client, cmd models.MClientCommand) {
	reply := &models.MCommandReply{Type: "ACK", Command: cmd.Command}

	switch cmd.Command {
	case "select_interval":
		reply.Interval = cmd.Interval
		if err := s.Controller.Select(cmd.Interval); err != nil {
			reply.Type = "ERROR"
			reply.Error = err.Error()
		}
	case "refresh":
		s.Controller.Refresh()
	default:
		reply.Type = "ERROR"
		reply.Error = "unknown command"
	}

	select {
	case s.direct <- clientMessage{client: client, payload: reply}:
	case <-s.done:
	}
}
