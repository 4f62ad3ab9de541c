// Package natsbus publishes dispatched actions to NATS.
//
// Each action is JSON encoded and published to the subject
// "<prefix>.<action type>", so consumers can subscribe to single action
// types or to "<prefix>.>" for all of them.
package natsbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/nats-io/nats.go"
	"github.com/on-the-ground/effect_ive_dispatch/effects/action"
	"github.com/on-the-ground/effect_ive_dispatch/effects/log"
	"github.com/on-the-ground/effect_ive_dispatch/pure"
	"github.com/on-the-ground/effect_ive_dispatch/shared/helper"
	"go.uber.org/zap"
)

const (
	// DefaultSubjectPrefix is used when no prefix is configured.
	DefaultSubjectPrefix = "effects.actions"
	// MaxConnectDelay caps the wait between connect attempts.
	MaxConnectDelay = 30 * time.Second
)

var ErrMissingType = errors.New("action has no type")

// Publisher is the part of *nats.Conn the sink needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

// Sink publishes every action it receives. Publish failures are logged and
// the action is dropped.
type Sink struct {
	pub      Publisher
	conn     *nats.Conn
	connOpts []nats.Option
	attempts int
	delay    *backoff.Backoff
	prefix   string
	encode   func(any) ([]byte, error)
	logger   *zap.Logger
}

var _ action.Sink = (*Sink)(nil)

// Option is an option setter used to configure creation.
type Option func(*Sink) error

// WithSubjectPrefix replaces DefaultSubjectPrefix.
func WithSubjectPrefix(prefix string) Option {
	return func(s *Sink) error {
		prefix = strings.Trim(prefix, ".")
		if prefix == "" {
			return errors.New("empty subject prefix")
		}
		s.prefix = prefix
		return nil
	}
}

// WithEncoder replaces JSON encoding of actions.
func WithEncoder(encode func(any) ([]byte, error)) Option {
	return func(s *Sink) error {
		if encode == nil {
			return errors.New("nil encoder")
		}
		s.encode = encode
		return nil
	}
}

// WithNATSOptions adds the NATS options to the client created by Connect.
func WithNATSOptions(opts ...nats.Option) Option {
	return func(s *Sink) error {
		s.connOpts = opts
		return nil
	}
}

// WithConnectRetry makes Connect try up to attempts times. The wait after the
// first failure is minDelay and doubles after each further one, up to
// MaxConnectDelay.
func WithConnectRetry(attempts int, minDelay time.Duration) Option {
	return func(s *Sink) error {
		if attempts < 1 || minDelay < 0 {
			return errors.New("invalid connect retry")
		}
		s.attempts = attempts
		s.delay = &backoff.Backoff{Min: minDelay, Max: MaxConnectDelay, Factor: 2}
		return nil
	}
}

// WithLogger sets the logger used for connect and publish failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Sink) error {
		if logger != nil {
			s.logger = logger
		}
		return nil
	}
}

// New creates a sink publishing through pub.
func New(pub Publisher, options ...Option) (*Sink, error) {
	if pub == nil {
		return nil, errors.New("nil publisher")
	}
	s := &Sink{
		pub:      pub,
		prefix:   DefaultSubjectPrefix,
		encode:   json.Marshal,
		attempts: 1,
		logger:   log.Nop(),
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(s); err != nil {
			return nil, fmt.Errorf("error while applying option: %w", err)
		}
	}
	return s, nil
}

// Connect creates a sink with its own NATS connection, released by Close.
func Connect(ctx context.Context, url string, options ...Option) (*Sink, error) {
	s, err := New(nopPublisher{}, options...)
	if err != nil {
		return nil, err
	}

	var conn *nats.Conn
	err = helper.Retry(ctx, s.attempts, s.delay, func() error {
		c, err := nats.Connect(url, s.connOpts...)
		if err != nil {
			s.logger.Warn("could not connect to NATS", zap.String("url", url), zap.Error(err))
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not connect to NATS: %w", err)
	}
	s.pub, s.conn = conn, conn
	return s, nil
}

// Subject returns the subject an action of the given type is published to.
func (s *Sink) Subject(actionType string) string {
	return s.prefix + "." + subjectToken(actionType)
}

func (s *Sink) Dispatch(_ context.Context, a any) {
	if err := s.Publish(a); err != nil {
		s.logger.Error("could not publish action", zap.Error(err))
	}
}

// Publish encodes a and publishes it.
func (s *Sink) Publish(a any) error {
	typ, ok := action.TypeOf(a)
	if !ok {
		return ErrMissingType
	}
	data, err := s.encode(a)
	if err != nil {
		return fmt.Errorf("could not marshal action %s: %w", typ, err)
	}
	if err := s.pub.Publish(s.Subject(typ), data); err != nil {
		return fmt.Errorf("could not publish action %s: %w", typ, err)
	}
	return nil
}

// Close flushes and closes the connection opened by Connect. Sinks created
// with New leave their publisher alone.
func (s *Sink) Close() error {
	if s.conn == nil || s.conn.IsClosed() {
		return nil
	}
	return s.conn.Drain()
}

// subjectToken keeps an action type from splitting into several subject
// tokens or forming a wildcard. Action types repeat, so results are
// memoized.
var subjectToken = pure.Tableize(func(actionType string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, actionType)
}, 1024)

type nopPublisher struct{}

func (nopPublisher) Publish(string, []byte) error { return nil }
