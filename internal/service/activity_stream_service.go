package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/inkwell-labs/inkwell-admin-api/internal/dto"
	"github.com/inkwell-labs/inkwell-admin-api/internal/observability"
)

const streamBufferSize = 16

// ActivityStreamService fans freshly recorded staff actions out to connected
// dashboard clients. Cross-node delivery rides redis pub/sub and NATS so any
// API node can serve the websocket.
type ActivityStreamService interface {
	Broadcast(ctx context.Context, event dto.ActivityEvent)
	Subscribe() (<-chan dto.ActivityEvent, func())
	Start(ctx context.Context)
}

type activityStreamService struct {
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	broker      *activityBroker
	nodeID      string
}

type activityStreamEnvelope struct {
	Source string            `json:"source"`
	Event  dto.ActivityEvent `json:"event"`
	SentAt time.Time         `json:"sent_at"`
}

type activityBroker struct {
	mu          sync.RWMutex
	subscribers map[chan dto.ActivityEvent]struct{}
}

// NewActivityStreamService constructs the live activity fan-out.
func NewActivityStreamService(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) ActivityStreamService {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":activity"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".activity"
	}

	return &activityStreamService{
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "activity_stream_service").Logger(),
		broker:      &activityBroker{subscribers: make(map[chan dto.ActivityEvent]struct{})},
		nodeID:      uuid.NewString(),
	}
}

func (s *activityStreamService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *activityStreamService) Broadcast(ctx context.Context, event dto.ActivityEvent) {
	s.broker.broadcast(event)
	if err := s.publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish activity event to broker")
	}
	observability.ActivityEventsStreamedTotal().WithLabelValues(event.Category).Inc()
}

func (s *activityStreamService) Subscribe() (<-chan dto.ActivityEvent, func()) {
	channel := make(chan dto.ActivityEvent, streamBufferSize)
	s.broker.subscribe(channel)
	observability.StreamClientsActive().Inc()

	cleanup := func() {
		s.broker.unsubscribe(channel)
		observability.StreamClientsActive().Dec()
	}
	return channel, cleanup
}

func (s *activityStreamService) publish(ctx context.Context, event dto.ActivityEvent) error {
	envelope := activityStreamEnvelope{
		Source: s.nodeID,
		Event:  event,
		SentAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			return err
		}
	}
	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}
	return nil
}

func (s *activityStreamService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("activity redis subscription closed")
			return
		}
		s.handleEnvelope([]byte(msg.Payload))
	}
}

func (s *activityStreamService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "inkwell-activity", func(msg *nats.Msg) {
		s.handleEnvelope(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats activity subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain activity nats subscription")
		}
	}()
}

func (s *activityStreamService) handleEnvelope(payload []byte) {
	var envelope activityStreamEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		s.logger.Warn().Err(err).Msg("invalid activity stream payload")
		return
	}
	if envelope.Source == s.nodeID {
		return
	}
	observability.ActivityEventsStreamedTotal().WithLabelValues(envelope.Event.Category).Inc()
	s.broker.broadcast(envelope.Event)
}

func (b *activityBroker) subscribe(ch chan dto.ActivityEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[ch] = struct{}{}
}

func (b *activityBroker) unsubscribe(ch chan dto.ActivityEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}

// broadcast never blocks; slow clients drop events rather than stall the
// publisher.
func (b *activityBroker) broadcast(event dto.ActivityEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
