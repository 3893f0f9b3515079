package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestChangeSignalerPublishesAndInvalidatesCache(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "examind:results:7", "stale", time.Minute).Err())

	sub := client.Subscribe(ctx, "examind:changes:7")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	signaler := NewChangeSignaler(client, nil, "examind", zerolog.Nop())
	signaler.Changed(ctx, 7, SignalKindResult)

	msg, err := sub.ReceiveTimeout(ctx, 2*time.Second)
	require.NoError(t, err)
	payload, ok := msg.(*redis.Message)
	require.True(t, ok)

	var signal changeSignal
	require.NoError(t, json.Unmarshal([]byte(payload.Payload), &signal))
	require.Equal(t, uint(7), signal.TenantID)
	require.Equal(t, SignalKindResult, signal.Kind)

	require.False(t, mini.Exists("examind:results:7"))
}

func TestChangeSignalerToleratesMissingBackends(t *testing.T) {
	signaler := NewChangeSignaler(nil, nil, "", zerolog.Nop())

	// Must not panic with no redis and no nats configured.
	signaler.Changed(context.Background(), 1, SignalKindProctor)
}
