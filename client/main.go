package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mahaj/room-relay/pkg/model"
)

func sendEvent(c *websocket.Conn, event string, payload any) error {
	frame, err := model.EncodeEnvelope(event, payload)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, frame)
}

func printEvent(frame []byte) {
	var env model.Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		log.Printf("received raw: %s", frame)
		return
	}

	switch env.Event {
	case model.EventHistory:
		var history []model.Message
		if json.Unmarshal(env.Data, &history) != nil {
			return
		}
		for _, msg := range history {
			tick := " "
			if msg.Read {
				tick = "✓"
			}
			fmt.Printf("\r[%d]%s %s: %s\n", msg.ID, tick, msg.From, msg.Text)
		}
		fmt.Print("> ")
	case model.EventNewMessage:
		var msg model.Message
		if json.Unmarshal(env.Data, &msg) != nil {
			return
		}
		fmt.Printf("\r[%d] %s: %s\n> ", msg.ID, msg.From, msg.Text)
	case model.EventRemoteTypingUpdate:
		var upd model.RemoteTypingUpdate
		if json.Unmarshal(env.Data, &upd) != nil {
			return
		}
		fmt.Printf("\r%s is typing: %s\n> ", upd.From, upd.Draft)
	case model.EventRemoteTypingStatus:
		var st model.RemoteTypingStatus
		if json.Unmarshal(env.Data, &st) != nil {
			return
		}
		fmt.Printf("\r%s is %s\n> ", st.From, st.Status)
	case model.EventMessageReadAck:
		var ack model.MessageReadAck
		if json.Unmarshal(env.Data, &ack) != nil {
			return
		}
		fmt.Printf("\r%s read message %d\n> ", ack.By, ack.MessageID)
	}
}

func main() {
	serverAddr := flag.String("addr", "localhost:8080", "gateway service address")
	userID := flag.String("user", "user1", "user id")
	roomID := flag.String("room", "general", "room id")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *serverAddr, Path: "/ws"}
	log.Printf("connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer c.Close()

	if err := sendEvent(c, model.EventJoin, model.JoinPayload{RoomID: *roomID, UserID: *userID}); err != nil {
		log.Fatal("join:", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, frame, err := c.ReadMessage()
			if err != nil {
				log.Println("read:", err)
				return
			}
			printEvent(frame)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	// Plain lines are messages; /draft, /typing, /stopped and /read exercise
	// the rest of the protocol.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print("> ")
		for scanner.Scan() {
			text := scanner.Text()
			if text == "" {
				fmt.Print("> ")
				continue
			}
			if text == "/quit" {
				close(interrupt)
				break
			}

			var err error
			switch {
			case strings.HasPrefix(text, "/draft "):
				err = sendEvent(c, model.EventTypingUpdate, model.TypingUpdatePayload{
					RoomID: *roomID, Draft: strings.TrimPrefix(text, "/draft "),
				})
			case text == "/typing":
				err = sendEvent(c, model.EventTypingStatus, model.TypingStatusPayload{
					RoomID: *roomID, Status: model.StatusTyping,
				})
			case text == "/stopped":
				err = sendEvent(c, model.EventTypingStatus, model.TypingStatusPayload{
					RoomID: *roomID, Status: model.StatusStopped,
				})
			case strings.HasPrefix(text, "/read "):
				var id int64
				id, err = strconv.ParseInt(strings.TrimPrefix(text, "/read "), 10, 64)
				if err != nil {
					log.Println("bad message id:", err)
					fmt.Print("> ")
					continue
				}
				err = sendEvent(c, model.EventMessageRead, model.MessageReadPayload{
					RoomID: *roomID, MessageID: id,
				})
			default:
				err = sendEvent(c, model.EventSendMessage, model.SendMessagePayload{
					RoomID: *roomID, Message: text,
				})
			}
			if err != nil {
				log.Println("write:", err)
				break
			}
			fmt.Print("> ")
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("interrupt")

			// Cleanly close the connection by sending a close message and then
			// waiting (with timeout) for the server to close the connection.
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("write close:", err)
				return
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		}
	}
}
