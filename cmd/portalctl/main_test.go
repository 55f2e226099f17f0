package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/logger"
)

func TestCloseDoesNotLogReadError(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "user-1")
	if err := client.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "debug", "text")
	done := make(chan struct{})
	go func() {
		client.ReadEvents(log)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ReadEvents did not return after Close")
	}
	if bytes.Contains(buf.Bytes(), []byte("read error")) {
		t.Fatalf("unexpected warning on clean close: %s", buf.String())
	}
}
