package web

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/maidenless/sl2edit/watch"
)

// Websocket feed of save-file change events, one JSON message per event.

type client struct {
	conn *websocket.Conn
	send chan []byte
}

var (
	clientsLock sync.Mutex
	clients     = map[*client]bool{}
)

func registerClient(c *client) {
	clientsLock.Lock()
	defer clientsLock.Unlock()
	clients[c] = true
}

func unregisterClient(c *client) {
	clientsLock.Lock()
	defer clientsLock.Unlock()
	if clients[c] {
		delete(clients, c)
		close(c.send)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(time.Second * 30)
	defer func() {
		ticker.Stop()
		unregisterClient(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[web] ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[web] ws write ping error: %v", err)
				return
			}
		}
	}
}

// BroadcastEvents forwards watcher events to every connected client until
// the event channel closes.
func BroadcastEvents(events <-chan watch.Event) {
	for ev := range events {
		msg, err := json.Marshal(&ev)
		if err != nil {
			log.Printf("[web] Failed to marshal event: %v", err)
			continue
		}
		clientsLock.Lock()
		for c := range clients {
			select {
			case c.send <- msg:
			default:
			}
		}
		clientsLock.Unlock()
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func HandlerWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] ws upgrade error: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 32)}
	registerClient(c)
	go c.writePump()
}
