package watch

import (
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestOffer_DropsOldest(t *testing.T) {
	ch := make(chan []byte, 2)
	offer(ch, []byte("a"))
	offer(ch, []byte("b"))
	offer(ch, []byte("c"))

	if got := string(<-ch); got != "b" {
		t.Errorf("first frame = %q, want b", got)
	}
	if got := string(<-ch); got != "c" {
		t.Errorf("second frame = %q, want c", got)
	}
}

func TestHub_InitialAndBroadcast(t *testing.T) {
	hub := NewHub(log.New(io.Discard, "", 0), func() ([]byte, error) {
		return []byte(`{"rev":"first"}`), nil
	})
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if string(msg) != `{"rev":"first"}` {
		t.Errorf("initial frame = %s", msg)
	}

	// The subscriber is registered before the initial frame is queued.
	if n := hub.Subscribers(); n != 1 {
		t.Fatalf("Subscribers() = %d, want 1", n)
	}
	hub.Broadcast([]byte(`{"rev":"second"}`))

	_, msg, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if string(msg) != `{"rev":"second"}` {
		t.Errorf("broadcast frame = %s", msg)
	}
}

func TestHub_LeaveOnClose(t *testing.T) {
	hub := NewHub(log.New(io.Discard, "", 0), func() ([]byte, error) { return []byte(`{}`), nil })
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for hub.Subscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber still registered after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
