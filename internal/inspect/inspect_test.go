package inspect

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vireo-dev/vireo/pkg/vireo"
)

func TestGraphEndpoint(t *testing.T) {
	count := vireo.NewRef(0)
	e := vireo.Watch(func() {
		_ = count.Get()
	})
	defer e.Stop()

	srv := NewServer()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/graph")
	if err != nil {
		t.Fatalf("GET /graph error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var entries []vireo.GraphEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	found := false
	for _, entry := range entries {
		if entry.Target == count.ID() && entry.Subscribers > 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the watched ref in the snapshot, got %v", entries)
	}
}

func TestEventsStream(t *testing.T) {
	srv := NewServer()
	remove := vireo.Observe(srv)
	defer remove()

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := strings.Replace(ts.URL, "http://", "ws://", 1) + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	// Wait for the server side to register the client.
	deadline := time.Now().Add(time.Second)
	for srv.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	count := vireo.NewRef(0)
	e := vireo.Watch(func() {
		_ = count.Get()
	})
	defer e.Stop()

	count.Set(1)
	vireo.Flush()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	sawTrigger := false
	for !sawTrigger {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read error before trigger event arrived: %v", err)
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("unmarshal error: %v", err)
		}
		if ev.Type == EventTriggered && ev.Target == count.ID() {
			sawTrigger = true
		}
	}
}

func TestBroadcastWithoutClientsIsCheap(t *testing.T) {
	srv := NewServer()

	// No clients: must be a no-op, not a panic.
	srv.FlushStarted(1)
	srv.FlushEnded(1, time.Millisecond)
	srv.EffectRan(1, time.Millisecond)
	srv.Triggered(1, "x", 0)

	if srv.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", srv.ClientCount())
	}
}

func TestCloseDisconnectsClients(t *testing.T) {
	srv := NewServer()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := strings.Replace(ts.URL, "http://", "ws://", 1) + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for srv.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	srv.Close()
	if srv.ClientCount() != 0 {
		t.Errorf("expected 0 clients after Close, got %d", srv.ClientCount())
	}
}
