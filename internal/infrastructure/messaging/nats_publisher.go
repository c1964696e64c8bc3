package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/streamhub/engagement-hub/config"
	"github.com/streamhub/engagement-hub/internal/domain/shared"
	"github.com/streamhub/engagement-hub/internal/infrastructure/metrics"
	"github.com/streamhub/engagement-hub/pkg/logger"
	"github.com/streamhub/engagement-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// NATS FORWARDING
// ══════════════════════════════════════════════════════════════════════════════

// Header names set on every forwarded message.
const (
	HeaderEventID       = "Event-Id"
	HeaderEventType     = "Event-Type"
	HeaderCorrelationID = "Correlation-Id"
)

// msgPublisher is the part of *nats.Conn the publisher needs.
type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATSPublisher forwards domain events to NATS subjects
// "<prefix>.<event type>", e.g. "engagement.relation.toggled".
type NATSPublisher struct {
	conn    msgPublisher
	prefix  string
	retrier *retry.Retrier
	timeout time.Duration
	log     *logger.Logger
}

// NewNATSPublisher creates a publisher on an established connection.
func NewNATSPublisher(conn msgPublisher, subjectPrefix string, log *logger.Logger) *NATSPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &NATSPublisher{
		conn:    conn,
		prefix:  strings.Trim(subjectPrefix, "."),
		retrier: retry.PublishRetrier(),
		timeout: 5 * time.Second,
		log:     log.With(logger.Component("nats_publisher")),
	}
}

// ConnectNATS dials the server described by cfg.
func ConnectNATS(cfg config.NATSConfig, appName string, log *logger.Logger) (*nats.Conn, error) {
	if log == nil {
		log = logger.Nop()
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name(appName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", logger.Err(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", logger.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return nc, nil
}

// Subject returns the subject an event type is published on.
func (p *NATSPublisher) Subject(t shared.EventType) string {
	if p.prefix == "" {
		return string(t)
	}
	return p.prefix + "." + string(t)
}

// Handle implements shared.EventHandler so the publisher can subscribe to the bus.
func (p *NATSPublisher) Handle(event shared.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	return p.Publish(ctx, event)
}

// Publish serializes event into a shared.EventEnvelope and sends it.
func (p *NATSPublisher) Publish(ctx context.Context, event shared.Event) error {
	msg, err := p.message(event)
	if err != nil {
		return err
	}

	err = p.retrier.Do(ctx, func(context.Context) error {
		if err := p.conn.PublishMsg(msg); err != nil {
			return retry.Retryable(err)
		}
		return nil
	})
	metrics.RecordEventPublished(string(event.EventType()), err)
	if err != nil {
		p.log.Warn("failed to forward event",
			logger.String("subject", msg.Subject),
			logger.Err(err),
		)
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}

func (p *NATSPublisher) message(event shared.Event) (*nats.Msg, error) {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	env := shared.EventEnvelope{
		ID:          uuid.NewString(),
		Type:        event.EventType(),
		AggregateID: event.AggregateID(),
		Timestamp:   event.OccurredAt(),
		Version:     1,
		Payload:     payload,
	}
	if c, ok := event.(interface{ Correlation() string }); ok {
		env.CorrelationID = c.Correlation()
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	msg := nats.NewMsg(p.Subject(event.EventType()))
	msg.Data = data
	msg.Header.Set(HeaderEventID, env.ID)
	msg.Header.Set(HeaderEventType, string(env.Type))
	if env.CorrelationID != "" {
		msg.Header.Set(HeaderCorrelationID, env.CorrelationID)
	}
	return msg, nil
}
