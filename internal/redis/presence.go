package redis

import (
	"context"
	"fmt"
	"log"
)

// onlinePlayersKey holds the set of user IDs with an active session. It
// mirrors the is_online column for cheap presence lookups; the database
// stays the source of truth.
const onlinePlayersKey = "online_players"

// MarkOnline adds a user to the online presence set
func (c *Client) MarkOnline(ctx context.Context, userID int) error {
	if err := c.SAdd(ctx, onlinePlayersKey, userID).Err(); err != nil {
		return fmt.Errorf("failed to mark user %d online: %w", userID, err)
	}
	return nil
}

// MarkOffline removes a user from the online presence set
func (c *Client) MarkOffline(ctx context.Context, userID int) error {
	if err := c.SRem(ctx, onlinePlayersKey, userID).Err(); err != nil {
		return fmt.Errorf("failed to mark user %d offline: %w", userID, err)
	}
	return nil
}

// OnlineCount returns the size of the online presence set
func (c *Client) OnlineCount(ctx context.Context) (int64, error) {
	count, err := c.SCard(ctx, onlinePlayersKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count online players: %w", err)
	}
	return count, nil
}

// Presence is the optional mirror handlers write through. A nil receiver
// is a no-op so the API runs without Redis.
type Presence struct {
	client *Client
}

// NewPresence wraps a Redis client for presence tracking
func NewPresence(client *Client) *Presence {
	return &Presence{client: client}
}

// SessionStarted records a user going online; failures are logged, never surfaced
func (p *Presence) SessionStarted(ctx context.Context, userID int) {
	if p == nil || p.client == nil {
		return
	}
	if err := p.client.MarkOnline(ctx, userID); err != nil {
		log.Printf("[Redis] %v", err)
	}
}

// SessionEnded records a user going offline; failures are logged, never surfaced
func (p *Presence) SessionEnded(ctx context.Context, userID int) {
	if p == nil || p.client == nil {
		return
	}
	if err := p.client.MarkOffline(ctx, userID); err != nil {
		log.Printf("[Redis] %v", err)
	}
}
