// Package main runs a demo WebSocket client for session events: it creates a
// route session, subscribes to its stream, then confirms a stop and prints
// the events as they arrive.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type sessionEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Create a session EGTF -> LFMD with one planned stop
	body := []byte(`{"from":"EGTF","to":"LFMD","targetStops":1}`)
	resp, err := http.Post(base+"/v1/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var sess struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		log.Fatal(err)
	}
	if sess.ID == "" {
		log.Fatal("no session id returned")
	}
	log.Printf("session %s created", sess.ID)

	wsURL := fmt.Sprintf("ws://localhost:%s/v1/sessions/%s/stream", port, sess.ID)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", wsURL, err)
	}
	defer func() { _ = conn.Close() }()

	// Confirm a stop after a short delay so the subscription is live
	go func() {
		time.Sleep(500 * time.Millisecond)
		confirm := []byte(`{"ident":"LFAT"}`)
		resp, err := http.Post(base+"/v1/sessions/"+sess.ID+"/confirm", "application/json", bytes.NewReader(confirm))
		if err != nil {
			log.Printf("confirm failed: %v", err)
			return
		}
		_ = resp.Body.Close()
	}()

	for {
		var evt sessionEvent
		_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		if err := conn.ReadJSON(&evt); err != nil {
			log.Printf("stream closed: %v", err)
			return
		}
		log.Printf("event %s: %v", evt.Type, evt.Data)
		if evt.Type == "session.completed" {
			return
		}
	}
}
