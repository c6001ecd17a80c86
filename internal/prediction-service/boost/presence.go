package boost

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Presence é o estado de geofencing do usuário
type Presence struct {
	UserID      string    `json:"userId"`
	AtStadium   bool      `json:"isAtStadium"`
	StadiumName string    `json:"stadiumName,omitempty"`
	LastChecked time.Time `json:"lastChecked,omitempty"`
}

// PresenceStore guarda check-ins no Redis com TTL; sem chave = fora do estádio
type PresenceStore struct {
	R   *redis.Client
	TTL time.Duration
	now func() time.Time
}

func NewPresenceStore(r *redis.Client, ttl time.Duration) *PresenceStore {
	return &PresenceStore{R: r, TTL: ttl, now: time.Now}
}

func key(userID string) string { return "presence:" + userID }

func (s *PresenceStore) CheckIn(ctx context.Context, userID, stadium string) (Presence, error) {
	p := Presence{UserID: userID, AtStadium: true, StadiumName: stadium, LastChecked: s.now().UTC()}
	b, err := json.Marshal(p)
	if err != nil {
		return Presence{}, err
	}
	if err := s.R.Set(ctx, key(userID), b, s.TTL).Err(); err != nil {
		return Presence{}, err
	}
	return p, nil
}

func (s *PresenceStore) CheckOut(ctx context.Context, userID string) (Presence, error) {
	if err := s.R.Del(ctx, key(userID)).Err(); err != nil {
		return Presence{}, err
	}
	return Presence{UserID: userID, LastChecked: s.now().UTC()}, nil
}

func (s *PresenceStore) Get(ctx context.Context, userID string) (Presence, error) {
	b, err := s.R.Get(ctx, key(userID)).Bytes()
	if err == redis.Nil {
		return Presence{UserID: userID}, nil
	}
	if err != nil {
		return Presence{}, err
	}
	var p Presence
	if err := json.Unmarshal(b, &p); err != nil {
		return Presence{}, err
	}
	return p, nil
}
