package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mcarruthers/shotsort/internal/core/domain"
	"github.com/mcarruthers/shotsort/internal/infrastructure/resilience"
)

// Queue dispatches per-screenshot classification work over NATS. Publishing
// happens on import; the worker queue-subscribes so multiple workers share
// the stream.
type Queue struct {
	conn     *nats.Conn
	subject  string
	workers  int
	executor *resilience.Executor
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	// Workers bounds concurrent handler invocations in Subscribe. The bound
	// exists because each handler may spend a paid remote call; unbounded
	// fan-out to a rate-limited endpoint invites throttling.
	Workers            int
	ResilienceExecutor *resilience.Executor
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	workers := options.Workers
	if workers <= 0 {
		workers = 4
	}

	conn, err := nats.Connect(
		url,
		nats.Name("shotsort"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:     conn,
		subject:  subject,
		workers:  workers,
		executor: options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishScreenshotImported(ctx context.Context, screenshotID string) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, []byte(screenshotID)); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}
	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		// Dispatch failures are transient from the importer's point of view;
		// the record stays pending and shows up in the gap report.
		return domain.WrapError(domain.ErrTemporary, "publish screenshot imported", err)
	}
	return nil
}

// SubscribeScreenshotImported consumes work until ctx is done. Handlers run
// on a pool of q.workers goroutines; completion order across screenshots is
// unspecified, which is fine because each record transitions independently.
func (q *Queue) SubscribeScreenshotImported(ctx context.Context, handler func(context.Context, string) error) error {
	var wg sync.WaitGroup
	sem := make(chan struct{}, q.workers)

	sub, err := q.conn.QueueSubscribe(q.subject, "workers", func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if err := handler(ctx, string(msg.Data)); err != nil {
				slog.Error("worker handler error",
					"screenshot_id", string(msg.Data), "error", err)
			}
		}()
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	wg.Wait()
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
