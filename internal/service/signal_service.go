package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Kinds of dashboard change signals.
const (
	SignalKindResult  = "result"
	SignalKindProctor = "proctor"
)

// ChangeSignaler emits a best-effort "data changed" notification so tenant
// dashboards can refresh. Delivery is not guaranteed and failures never
// propagate to the caller.
type ChangeSignaler interface {
	Changed(ctx context.Context, tenantID uint, kind string)
}

type changeSignal struct {
	TenantID uint      `json:"tenant_id"`
	Kind     string    `json:"kind"`
	At       time.Time `json:"at"`
}

type changeSignaler struct {
	redis       *redis.Client
	nats        *nats.Conn
	channelBase string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewChangeSignaler builds the signal publisher. Either backend may be nil;
// publication is skipped for absent backends.
func NewChangeSignaler(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) ChangeSignaler {
	if channelBase == "" {
		channelBase = "examind"
	}
	return &changeSignaler{
		redis:       redisClient,
		nats:        natsConn,
		channelBase: channelBase,
		logger:      logger.With().Str("component", "change_signaler").Logger(),
		now:         time.Now,
	}
}

func (s *changeSignaler) Changed(ctx context.Context, tenantID uint, kind string) {
	payload, err := json.Marshal(changeSignal{TenantID: tenantID, Kind: kind, At: s.now()})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode change signal")
		return
	}

	if s.redis != nil {
		channel := fmt.Sprintf("%s:changes:%d", s.channelBase, tenantID)
		if err := s.redis.Publish(ctx, channel, payload).Err(); err != nil {
			s.logger.Warn().Err(err).Str("channel", channel).Msg("failed to publish change signal to redis")
		}
		// The tenant results cache is stale after any change.
		cacheKey := fmt.Sprintf("%s:results:%d", s.channelBase, tenantID)
		if err := s.redis.Del(ctx, cacheKey).Err(); err != nil {
			s.logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to invalidate results cache")
		}
	}

	if s.nats != nil {
		subject := fmt.Sprintf("%s.changes.%d", s.channelBase, tenantID)
		if err := s.nats.Publish(subject, payload); err != nil {
			s.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish change signal to nats")
		}
	}
}

// NopSignaler discards every signal. Used when no backend is configured and
// in tests.
type NopSignaler struct{}

// Changed implements ChangeSignaler.
func (NopSignaler) Changed(context.Context, uint, string) {}
