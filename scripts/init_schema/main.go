package main

import (
	"log"

	"github.com/mahaj/room-relay/pkg/db"
)

// Standalone schema bootstrap for running the gateway and api without the
// archiver (which otherwise applies the same DDL at startup).
func main() {
	scyllaHosts := []string{"localhost:9042"}

	sys, err := db.Connect(scyllaHosts, "system")
	if err != nil {
		log.Fatalf("Failed to connect to ScyllaDB system keyspace: %v", err)
	}
	err = sys.Query(`CREATE KEYSPACE IF NOT EXISTS chat WITH REPLICATION = { 'class' : 'SimpleStrategy', 'replication_factor' : 1 }`).Exec()
	sys.Close()
	if err != nil {
		log.Fatalf("Failed to create keyspace: %v", err)
	}

	session, err := db.Connect(scyllaHosts, "chat")
	if err != nil {
		log.Fatalf("Failed to connect to ScyllaDB chat keyspace: %v", err)
	}
	defer session.Close()

	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS room_messages (
			room_id text,
			id bigint,
			sender_id text,
			content text,
			created_at timestamp,
			read boolean,
			PRIMARY KEY (room_id, id)
		) WITH CLUSTERING ORDER BY (id ASC)`,
		`CREATE TABLE IF NOT EXISTS message_rooms (
			id bigint PRIMARY KEY,
			room_id text
		)`,
		`CREATE TABLE IF NOT EXISTS relay_events (
			room_id text,
			at timeuuid,
			event text,
			payload text,
			PRIMARY KEY (room_id, at)
		)`,
	} {
		if err := session.Query(ddl).Exec(); err != nil {
			log.Fatalf("Failed to create table: %v", err)
		}
	}
	log.Println("Schema created successfully.")
}
