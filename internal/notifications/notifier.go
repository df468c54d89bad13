package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix = "events:user:"
	broadcastChannel  = "events:broadcast"
)

// Event is the wire format delivered to websocket clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// RevalidatePayload names the page paths whose cached views went stale.
type RevalidatePayload struct {
	Paths []string `json:"paths"`
}

// FriendRequestPayload describes a friend request event delivered to the receiver.
type FriendRequestPayload struct {
	RequestID uint   `json:"request_id"`
	Username  string `json:"username"`
	Status    string `json:"status"`
}

// Notifier provides helpers to publish events into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends an event payload to a user's channel.
func (n *Notifier) PublishUser(
	ctx context.Context, userID uint, payload string,
) error {
	if n.rdb == nil {
		return nil
	}
	channel := fmt.Sprintf(userChannelPrefix+"%d", userID)
	return n.rdb.Publish(ctx, channel, payload).Err()
}

// PublishBroadcast sends an event payload to all connected users.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, broadcastChannel, payload).Err()
}

// PublishRevalidate broadcasts a revalidate event for the given page paths.
// Clients re-fetch those pages when they receive it.
func (n *Notifier) PublishRevalidate(ctx context.Context, paths ...string) error {
	if n.rdb == nil {
		return nil
	}
	event := Event{Type: "revalidate", Payload: RevalidatePayload{Paths: paths}}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal revalidate event: %w", err)
	}
	return n.PublishBroadcast(ctx, string(data))
}

// PublishFriendRequest sends a friend request event to the receiving user.
func (n *Notifier) PublishFriendRequest(
	ctx context.Context, receiverID uint, payload FriendRequestPayload,
) error {
	if n.rdb == nil {
		return nil
	}
	event := Event{Type: "friend_request", Payload: payload}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal friend request event: %w", err)
	}
	return n.PublishUser(ctx, receiverID, string(data))
}

// StartPatternSubscriber subscribes to the user and broadcast channels and
// calls onMessage for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*", broadcastChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}
