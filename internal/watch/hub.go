// Package watch pushes session snapshots to websocket subscribers.
package watch

import (
	"context"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 5 * time.Second
	readWait  = 60 * time.Second
	// pingPeriod must stay below readWait so idle subscribers keep the
	// read deadline moving through pongs.
	pingPeriod = 30 * time.Second
	// queueSize bounds the frames buffered per subscriber. Every frame is a
	// full snapshot, so a slow subscriber only ever needs the newest one.
	queueSize = 4
)

// Hub fans snapshot frames out to every connected subscriber.
type Hub struct {
	log     *log.Logger
	current func() ([]byte, error)

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu   sync.Mutex
	subs map[uint64]chan []byte
}

// NewHub returns a hub. current produces the frame a new subscriber
// receives first.
func NewHub(logger *log.Logger, current func() ([]byte, error)) *Hub {
	return &Hub{
		log:     logger,
		current: current,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // local daemon
		},
		subs: make(map[uint64]chan []byte),
	}
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Broadcast queues frame for every subscriber without blocking. A full
// queue drops its oldest frame.
func (h *Hub) Broadcast(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		offer(ch, frame)
	}
}

func offer(ch chan []byte, frame []byte) {
	for {
		select {
		case ch <- frame:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (h *Hub) join() (uint64, chan []byte) {
	id := h.nextID.Add(1)
	ch := make(chan []byte, queueSize)
	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()
	return id, ch
}

func (h *Hub) leave(id uint64) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

// Handler upgrades the request and streams frames until the client leaves.
// Messages from the client are read and ignored.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id, out := h.join()
		defer h.leave(id)
		h.log.Printf("watch: subscriber %d joined from %s", id, r.RemoteAddr)

		if first, err := h.current(); err != nil {
			h.log.Printf("watch: initial snapshot failed: %v", err)
		} else {
			offer(out, first)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			ticker := time.NewTicker(pingPeriod)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case <-ticker.C:
					if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
						writeErr <- err
						cancel()
						return
					}
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop: detects the close.
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(readWait))
		})
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readWait))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
		h.log.Printf("watch: subscriber %d left", id)
	}
}
