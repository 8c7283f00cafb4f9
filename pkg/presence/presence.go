package presence

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Tracker records which users are present in which room. Presence is
// advisory: the relay logs tracker failures and carries on, and a nil tracker
// is a supported configuration.
type Tracker interface {
	Track(ctx context.Context, roomID, userID string) error
	Untrack(ctx context.Context, roomID, userID string) error
	List(ctx context.Context, roomID string) ([]string, error)
}

// Redis keeps one set per room. The gateway writes it on join/leave and the
// API service reads it for the room members endpoint.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func key(roomID string) string {
	return "room:" + roomID + ":users"
}

func (r *Redis) Track(ctx context.Context, roomID, userID string) error {
	return r.client.SAdd(ctx, key(roomID), userID).Err()
}

func (r *Redis) Untrack(ctx context.Context, roomID, userID string) error {
	return r.client.SRem(ctx, key(roomID), userID).Err()
}

func (r *Redis) List(ctx context.Context, roomID string) ([]string, error) {
	return r.client.SMembers(ctx, key(roomID)).Result()
}
