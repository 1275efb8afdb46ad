// Package publish sends a run plan to an external scheduler over socket.io.
package publish

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/vk/zregistry/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultTimeout bounds a publication when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Config describes where and how a plan is published.
type Config struct {
	// URL of the socket.io endpoint, e.g. "http://scheduler:3000/socket.io/".
	URL       string
	Namespace string
	// Event is emitted once with the plan as its only argument.
	Event string
	// AckEvent, when set, is the event the server sends back to confirm
	// receipt. Without it the server must acknowledge the emit itself
	// through the socket.io ack callback.
	AckEvent           string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Publisher emits run plans to one socket.io endpoint.
type Publisher struct {
	cfg Config
}

// New validates cfg and returns a Publisher.
func New(cfg Config) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("publish: URL must not be empty")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("publish: failed to parse URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("publish: URL %q must include scheme and host", cfg.URL)
	}
	if cfg.Event == "" {
		return nil, errors.New("publish: event name must not be empty")
	}
	if socket.RESERVED_EVENTS.Has(cfg.Event) {
		return nil, fmt.Errorf("publish: %q is a reserved event name", cfg.Event)
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Publisher{cfg: cfg}, nil
}

type result struct {
	err error
}

// Publish connects, emits payload and disconnects once the server has
// confirmed receipt. It fails if the connection or the confirmation does
// not arrive before the timeout or ctx is done.
func (p *Publisher) Publish(ctx context.Context, payload map[string]any) error {
	logger := ctxlog.FromContext(ctx).With("url", p.cfg.URL, "namespace", p.cfg.Namespace, "event", p.cfg.Event)
	logger.Debug("Publishing plan.")

	var isConnected atomic.Bool

	done := make(chan result, 1)
	finish := func(r result) {
		select {
		case done <- r:
		default:
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	parsedURL, err := url.Parse(p.cfg.URL)
	if err != nil {
		return fmt.Errorf("publish: failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if p.cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(p.cfg.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Debug("Connected.", "sid", io.Id())
		if p.cfg.AckEvent != "" {
			if err := io.Emit(p.cfg.Event, payload); err != nil {
				finish(result{err: fmt.Errorf("publish: %w", err)})
			}
			return
		}
		io.EmitWithAck(p.cfg.Event, payload)(func(_ []any, err error) {
			if err != nil {
				finish(result{err: fmt.Errorf("publish: %q was not acknowledged: %w", p.cfg.Event, err)})
				return
			}
			finish(result{})
		})
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connection failed")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		finish(result{err: fmt.Errorf("publish: %w", err)})
	})

	if p.cfg.AckEvent != "" {
		io.On(types.EventName(p.cfg.AckEvent), func(...any) {
			finish(result{})
		})
	}

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			if p.cfg.AckEvent != "" {
				return fmt.Errorf("publish: timed out waiting for %q after connecting: %w", p.cfg.AckEvent, opCtx.Err())
			}
			return fmt.Errorf("publish: timed out waiting for acknowledgement of %q: %w", p.cfg.Event, opCtx.Err())
		}
		return fmt.Errorf("publish: timed out waiting for connection: %w", opCtx.Err())
	case r := <-done:
		if r.err != nil {
			return r.err
		}
		logger.Info("Plan published.")
		return nil
	}
}
