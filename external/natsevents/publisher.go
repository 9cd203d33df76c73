// Package natsevents publishes tournament lifecycle events to a JetStream
// stream after the state change they describe has committed.
package natsevents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/riskibarqy/trading-tournament/internal/platform/logging"
	"github.com/riskibarqy/trading-tournament/internal/usecase"
)

const (
	StreamName    = "TOURNAMENT_EVENTS"
	SubjectPrefix = "tournaments.events"
)

type Config struct {
	URL            string
	PublishTimeout time.Duration
	Logger         *logging.Logger
}

// Publisher implements usecase.EventPublisher on top of JetStream.
type Publisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	timeout time.Duration
	logger  *logging.Logger
}

// Connect dials NATS and makes sure the events stream exists.
func Connect(ctx context.Context, cfg Config) (*Publisher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	nc, err := nats.Connect(cfg.URL, nats.Name("trading-tournament"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("init jetstream: %w", err)
	}
	if err := EnsureStream(ctx, js); err != nil {
		nc.Close()
		return nil, err
	}

	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	logger.Info("nats event publisher connected", "url", nc.ConnectedUrlRedacted(), "stream", StreamName)
	return &Publisher{conn: nc, js: js, timeout: timeout, logger: logger}, nil
}

func EnsureStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectPrefix + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", StreamName, err)
	}
	return nil
}

// Subject maps "tournament.started" to "tournaments.events.tournament.started".
func Subject(event usecase.TournamentEvent) string {
	return SubjectPrefix + "." + strings.ToLower(string(event.Type))
}

func (p *Publisher) Publish(ctx context.Context, event usecase.TournamentEvent) error {
	data, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// Msg id lets JetStream drop a duplicate publish of the same transition.
	msgID := fmt.Sprintf("%s:%s:%s", event.TournamentID, event.Type, event.UserID)
	if _, err := p.js.Publish(ctx, Subject(event), data, jetstream.WithMsgID(msgID)); err != nil {
		return fmt.Errorf("publish %s: %w", Subject(event), err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("drain nats connection failed", "error", err)
	}
}
