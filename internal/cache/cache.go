// Package cache holds the optional Redis connection used to stream round
// history to external consumers. The rest of the service treats a nil client
// as "historian disabled" and plays on without it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the process-wide Redis client. Nil until Init succeeds.
var Rdb *redis.Client

// RoundQueueKey is the list round records are pushed onto.
const RoundQueueKey = "blackjack:rounds"

// Init connects to Redis at addr and pings it. On success Rdb is set.
func Init(ctx context.Context, addr string) error {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping %s: %w", addr, err)
	}
	Rdb = client
	return nil
}

// Close releases the client, if any.
func Close() error {
	if Rdb == nil {
		return nil
	}
	err := Rdb.Close()
	Rdb = nil
	return err
}

// RoundRecord is one resolved round as pushed to the historian queue.
type RoundRecord struct {
	SessionID  uuid.UUID `json:"sessionId"`
	PlayerName string    `json:"playerName"`
	Mode       string    `json:"mode"`
	Round      int       `json:"round"`
	Outcome    string    `json:"outcome"`
	PlayerHand string    `json:"playerHand"`
	DealerHand string    `json:"dealerHand"`
	Bet        int       `json:"bet,omitempty"`
	Payout     int       `json:"payout,omitempty"`
	Chips      int       `json:"chips,omitempty"`
	Timestamp  int64     `json:"timestamp"`
}

// PublishRoundRecord RPUSHes rec onto the round queue as JSON.
func PublishRoundRecord(ctx context.Context, rec RoundRecord) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal round record: %w", err)
	}
	if err := Rdb.RPush(ctx, RoundQueueKey, data).Err(); err != nil {
		return fmt.Errorf("rpush round record: %w", err)
	}
	return nil
}
