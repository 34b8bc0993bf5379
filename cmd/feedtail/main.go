// Command feedtail connects to a running server's feed event stream and
// prints every event to stdout. Useful for watching a deployment live.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

type feedEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	PostID    uint      `json:"post_id"`
	UserID    uint      `json:"user_id"`
	Title     string    `json:"title"`
	VoteValue int       `json:"vote_value"`
	CreatedAt time.Time `json:"created_at"`
}

func main() {
	addr := flag.String("addr", "localhost:8370", "server host:port")
	token := flag.String("token", "", "bearer token (optional, attributes the connection)")
	raw := flag.Bool("raw", false, "print raw JSON payloads instead of formatted lines")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/api/ws/feed"}
	if *token != "" {
		q := u.Query()
		q.Set("token", *token)
		u.RawQuery = q.Encode()
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("dial %s: %v", u.String(), err)
	}
	defer conn.Close()

	log.Printf("Tailing feed events from %s", *addr)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				log.Printf("read: %v", err)
				return
			}

			if *raw {
				fmt.Println(string(payload))
				continue
			}

			var event feedEvent
			if err := json.Unmarshal(payload, &event); err != nil {
				log.Printf("malformed event: %v", err)
				continue
			}
			printEvent(event)
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

func printEvent(event feedEvent) {
	ts := event.CreatedAt.Local().Format("15:04:05")
	switch event.Type {
	case "post_created":
		fmt.Printf("%s  post %d created by user %d: %q\n", ts, event.PostID, event.UserID, event.Title)
	case "vote_cast":
		arrow := "+1"
		if event.VoteValue < 0 {
			arrow = "-1"
		}
		fmt.Printf("%s  post %d voted %s by user %d\n", ts, event.PostID, arrow, event.UserID)
	default:
		fmt.Printf("%s  %s on post %d\n", ts, event.Type, event.PostID)
	}
}
