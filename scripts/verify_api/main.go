package main

import (
	"io"
	"log"
	"net/http"
)

// Smoke check against a running api service.
func main() {
	apiAddr := "http://localhost:8081"

	log.Println("Fetching history for room general...")
	resp, err := http.Get(apiAddr + "/history?room_id=general&limit=10")
	if err != nil {
		log.Fatal("History request failed:", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	log.Printf("History (%d): %s", resp.StatusCode, string(body))

	log.Println("Fetching presence for room general...")
	resp, err = http.Get(apiAddr + "/rooms/general/users")
	if err != nil {
		log.Fatal("Presence request failed:", err)
	}
	defer resp.Body.Close()

	body, _ = io.ReadAll(resp.Body)
	log.Printf("Presence (%d): %s", resp.StatusCode, string(body))
}
