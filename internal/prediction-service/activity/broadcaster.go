package activity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	TypePlaced  = "prediction_placed"
	TypeSettled = "prediction_settled"
)

// Activity é o payload do feed ao vivo (amigos seguindo as apostas de um usuário)
type Activity struct {
	Type         string    `json:"type"`
	UserID       string    `json:"userId"`
	PredictionID string    `json:"predictionId"`
	MarketID     string    `json:"marketId"`
	OptionID     string    `json:"optionId,omitempty"`
	Coins        int64     `json:"coins"`
	PotentialWin int64     `json:"potentialWin,omitempty"`
	Boosted      bool      `json:"boosted,omitempty"`
	Outcome      string    `json:"outcome,omitempty"`
	Ts           time.Time `json:"ts"`
}

// RedisBroadcaster publica atividades no Redis Pub/Sub (consumido pelo ws.Hub)
type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) Channel() string { return b.channel }

func (b *RedisBroadcaster) Publish(ctx context.Context, a Activity) error {
	if a.Ts.IsZero() {
		a.Ts = time.Now().UTC()
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return b.r.Publish(ctx, b.channel, payload).Err()
}
