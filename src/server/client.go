package server

import (
	"time"

	"sensor-dashboard/src/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxCommandSize = 4 * 1024
)

// -----------------------------------------------------------------------------
// Client is one websocket connection of the dashboard page.
// -----------------------------------------------------------------------------

type Client struct {
	id   string
	hub  *DashboardServer
	conn *websocket.Conn
	send chan interface{}
}

// -----------------------------------------------------------------------------

// readPump decodes commands until the peer goes away. A payload that is not a
// command ends the session.
func (c *Client) readPump() {
	defer c.leave()

	c.conn.SetReadLimit(maxCommandSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var cmd models.MClientCommand
		err := c.conn.ReadJSON(&cmd)
		switch {
		case err == nil:
			c.hub.HandleCommand(c, cmd)
			continue
		case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure):
			c.hub.Logger.Info("WebSocket error from %s: %v", c.id, err)
		case !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure):
			c.hub.Logger.Debug("Closing %s: %v", c.id, err)
		}
		return
	}
}

func (c *Client) leave() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}
	c.conn.Close()
	c.hub.Logger.Info("Client %s disconnected", c.id)
}

// -----------------------------------------------------------------------------

// writePump serialises frames and replies and keeps the connection alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "dashboard stopping"))
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.hub.Logger.Info("Write error for %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
