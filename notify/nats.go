package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	pomodoro "github.com/d093w1z/pomodoro/api"
	"github.com/d093w1z/pomodoro/config"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const (
	eventType     = "pomodoro.completed"
	connectWait   = 2 * time.Second
	flushDeadline = 2 * time.Second
)

// NATS publishes completion events. Permission is granted once a connection
// to the server is established.
type NATS struct {
	perm gate
	cfg  config.NATSConfig

	mu sync.Mutex
	nc *nats.Conn
}

func NewNATS(cfg config.NATSConfig) *NATS {
	return &NATS{cfg: cfg}
}

func (n *NATS) RequestPermission(ctx context.Context) pomodoro.Permission {
	return n.perm.request(ctx, func(context.Context) pomodoro.Permission {
		nc, err := n.connect()
		if err != nil {
			log.Warn().Err(err).Str("url", n.cfg.URL).Msg("NATS unavailable, completion events disabled")
			return pomodoro.PermissionDenied
		}
		n.mu.Lock()
		n.nc = nc
		n.mu.Unlock()
		return pomodoro.PermissionGranted
	})
}

func (n *NATS) connect() (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("pomodoro"),
		nats.Timeout(connectWait),
		nats.MaxReconnects(n.cfg.MaxReconnects),
		nats.ReconnectWait(n.cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(n.cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

func (n *NATS) Notify(_ context.Context, message string) error {
	if !n.perm.granted() {
		return nil
	}

	data, err := envelope(message, time.Now())
	if err != nil {
		return err
	}

	n.mu.Lock()
	nc := n.nc
	n.mu.Unlock()
	if nc == nil {
		return nil
	}

	if err := nc.Publish(n.cfg.Subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", n.cfg.Subject, err)
	}
	if err := nc.FlushTimeout(flushDeadline); err != nil {
		return fmt.Errorf("flush %s: %w", n.cfg.Subject, err)
	}
	log.Debug().Str("subject", n.cfg.Subject).Msg("published completion event")
	return nil
}

// Close drains the connection, if one was opened.
func (n *NATS) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.nc == nil {
		return nil
	}
	err := n.nc.Drain()
	n.nc = nil
	return err
}

func envelope(message string, at time.Time) ([]byte, error) {
	env := map[string]interface{}{
		"eventId":   uuid.New().String(),
		"eventType": eventType,
		"timestamp": at.UTC(),
		"message":   message,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}
