package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerList(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, brokerList("a:9092, b:9092,"))
	assert.Empty(t, brokerList(""))
}

func TestNewWriter_FixesTopic(t *testing.T) {
	w := NewWriter("localhost:9092", "market_settled")
	assert.Equal(t, "market_settled", w.Topic)
	assert.Empty(t, NewMultiTopicWriter("localhost:9092").Topic)
}

type sink struct{ got []kafka.Message }

func (s *sink) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	s.got = append(s.got, msgs...)
	return nil
}

func TestWriteJSON(t *testing.T) {
	s := &sink{}
	require.NoError(t, WriteJSON(context.Background(), s, "k", map[string]int{"coins": 10}))
	require.Len(t, s.got, 1)
	assert.Equal(t, "k", string(s.got[0].Key))
	assert.JSONEq(t, `{"coins":10}`, string(s.got[0].Value))
}
