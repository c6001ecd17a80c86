package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/varsity-predictions/internal/prediction-service/activity"
)

// StartRedisSubscriber escuta o canal de atividade no Redis Pub/Sub
// e repassa cada mensagem ao Hub até o contexto ser cancelado
func StartRedisSubscriber(ctx context.Context, log *zap.Logger, r *redis.Client, channel string, hub *Hub) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var a activity.Activity
				if err := json.Unmarshal([]byte(msg.Payload), &a); err != nil {
					log.Warn("activity subscriber unmarshal", zap.Error(err))
					continue
				}
				hub.Broadcast(a)
			}
		}
	}()
}
