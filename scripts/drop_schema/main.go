package main

import (
	"log"

	"github.com/mahaj/room-relay/pkg/db"
)

func main() {
	scyllaHosts := []string{"localhost:9042"}

	session, err := db.Connect(scyllaHosts, "chat")
	if err != nil {
		log.Fatalf("Failed to connect to ScyllaDB: %v", err)
	}
	defer session.Close()

	for _, table := range []string{"room_messages", "message_rooms", "relay_events"} {
		log.Printf("Dropping table %s...", table)
		if err := session.Query("DROP TABLE IF EXISTS " + table).Exec(); err != nil {
			log.Fatalf("Failed to drop table %s: %v", table, err)
		}
	}
	log.Println("Tables dropped successfully.")
}
