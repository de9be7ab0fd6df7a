package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pms-backend/models"
)

// Notifier publishes domain events to a redis channel, fire-and-forget.
// Delivery is never part of the correctness contract: a nil client
// disables publishing and failures are only logged.
type Notifier struct {
	Client  *redis.Client
	Channel string
	Log     *zap.Logger
}

func NewNotifier(client *redis.Client, channel string, log *zap.Logger) *Notifier {
	if channel == "" {
		channel = "pms.events"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{Client: client, Channel: channel, Log: log}
}

type event struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	TenantID  uint        `json:"tenant_id"`
	HotelID   uint        `json:"hotel_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// Publish emits the event in a goroutine and returns immediately.
func (n *Notifier) Publish(tc models.TenantContext, name string, payload interface{}) {
	if n == nil || n.Client == nil {
		return
	}
	ev := event{
		ID:        uuid.NewString(),
		Event:     name,
		TenantID:  tc.TenantID,
		HotelID:   tc.HotelID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	go func() {
		body, err := json.Marshal(ev)
		if err != nil {
			n.Log.Warn("notifier: marshal failed", zap.String("event", name), zap.Error(err))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := n.Client.Publish(ctx, n.Channel, body).Err(); err != nil {
			n.Log.Warn("notifier: publish failed", zap.String("event", name), zap.Error(err))
		}
	}()
}
