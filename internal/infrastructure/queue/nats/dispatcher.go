package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tallyhq/docwatch/internal/core/domain"
	"github.com/tallyhq/docwatch/internal/infrastructure/resilience"
)

// ReminderEnvelope is the wire form of a reminder handed to the delivery
// side. Channel repeats the subject suffix so consumers on a wildcard
// subscription do not need to parse subjects.
type ReminderEnvelope struct {
	Reminder    domain.DocumentReminder `json:"reminder"`
	Channel     domain.Channel          `json:"channel"`
	PublishedAt time.Time               `json:"published_at"`
}

// Dispatcher publishes reminders to per-channel subjects
// (<prefix>.push, <prefix>.email) for the notification workers.
type Dispatcher struct {
	conn          *nats.Conn
	subjectPrefix string
	executor      *resilience.Executor
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func New(url, subjectPrefix string) (*Dispatcher, error) {
	return NewWithOptions(url, subjectPrefix, Options{})
}

func NewWithOptions(url, subjectPrefix string, options Options) (*Dispatcher, error) {
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

	conn, err := nats.Connect(
		url,
		nats.Name("docwatch"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Dispatcher{
		conn:          conn,
		subjectPrefix: subjectPrefix,
		executor:      options.ResilienceExecutor,
	}, nil
}

func (d *Dispatcher) Close() {
	if d.conn != nil {
		d.conn.Close()
	}
}

// Dispatch publishes one reminder for one channel.
func (d *Dispatcher) Dispatch(ctx context.Context, reminder domain.DocumentReminder, channel domain.Channel) error {
	payload, err := json.Marshal(ReminderEnvelope{
		Reminder:    reminder,
		Channel:     channel,
		PublishedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal reminder envelope: %w", err)
	}
	subject := fmt.Sprintf("%s.%s", d.subjectPrefix, channel)

	call := func(_ context.Context) error {
		if err := d.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if d.executor != nil {
		err = d.executor.Run(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeReminders consumes all channels under the prefix in the
// "notifiers" queue group and blocks until ctx is done.
func (d *Dispatcher) SubscribeReminders(ctx context.Context, handler func(context.Context, ReminderEnvelope) error) error {
	subject := d.subjectPrefix + ".>"
	sub, err := d.conn.QueueSubscribe(subject, "notifiers", func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		var envelope ReminderEnvelope
		if err := json.Unmarshal(msg.Data, &envelope); err != nil {
			slog.Error("reminder_envelope_decode_failed", "subject", msg.Subject, "error", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, envelope); err != nil {
			slog.Error("reminder_handler_failed",
				"reminder_id", envelope.Reminder.ID,
				"channel", envelope.Channel,
				"error", err,
			)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := d.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := d.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
