// Package notify implements pomodoro.Notifier for the desktop, NATS and the
// log. Every implementation is best effort: a missing permission turns
// Notify into a no-op.
package notify

import (
	"context"
	"errors"
	"sync"

	pomodoro "github.com/d093w1z/pomodoro/api"
	"github.com/rs/zerolog"
)

// gate remembers the permission decision. The probe runs at most once,
// while the state is still undetermined.
type gate struct {
	mu    sync.Mutex
	state pomodoro.Permission
}

func (g *gate) request(ctx context.Context, probe func(context.Context) pomodoro.Permission) pomodoro.Permission {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == pomodoro.PermissionDefault {
		g.state = probe(ctx)
	}
	return g.state
}

func (g *gate) granted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == pomodoro.PermissionGranted
}

// ------------------- Log -------------------

// Log writes notifications to a zerolog logger. It never needs permission.
type Log struct {
	logger zerolog.Logger
}

func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) RequestPermission(context.Context) pomodoro.Permission {
	return pomodoro.PermissionGranted
}

func (l *Log) Notify(_ context.Context, message string) error {
	l.logger.Info().Str("message", message).Msg("notification")
	return nil
}

// ------------------- Multi -------------------

// Multi fans out to several notifiers.
type Multi []pomodoro.Notifier

// RequestPermission asks every child. The result is granted if any child
// granted, denied if all denied, and default otherwise.
func (m Multi) RequestPermission(ctx context.Context) pomodoro.Permission {
	result := pomodoro.PermissionDenied
	for _, n := range m {
		switch n.RequestPermission(ctx) {
		case pomodoro.PermissionGranted:
			result = pomodoro.PermissionGranted
		case pomodoro.PermissionDefault:
			if result == pomodoro.PermissionDenied {
				result = pomodoro.PermissionDefault
			}
		}
	}
	return result
}

func (m Multi) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
