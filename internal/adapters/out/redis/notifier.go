package redis

import (
	"context"
	"encoding/json"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// Event is the message published to a party channel.
type Event struct {
	Kind    ports.EventKind `json:"kind"`
	OrderID string          `json:"orderId"`
	At      time.Time       `json:"at"`
}

// Notifier publishes events on one channel per party. Parties without a
// subscriber simply miss the message.
type Notifier struct {
	client *redis.Client
	now    func() time.Time
}

func NewNotifier(client *redis.Client) *Notifier {
	return &Notifier{client: client, now: time.Now}
}

// PartyChannel is the channel a party subscribes to.
func PartyChannel(partyID kernel.UUID) string {
	return generateKey("party", partyID.String())
}

func (n *Notifier) Notify(ctx context.Context, partyID kernel.UUID, kind ports.EventKind, orderID kernel.UUID) error {
	payload, err := json.Marshal(Event{Kind: kind, OrderID: orderID.String(), At: n.now().UTC()})
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, PartyChannel(partyID), payload).Err()
}
