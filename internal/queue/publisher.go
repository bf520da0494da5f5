package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/secondhand-bookstore/internal/log"
)

// Publisher sends events to a durable queue on the default exchange.  It
// dials per publish, which keeps it free of connection state at the cost
// of a handshake per event.
type Publisher struct {
	URL      string
	Queue    string
	Attempts uint
}

func NewPublisher(url, queue string) *Publisher {
	return &Publisher{URL: url, Queue: queue, Attempts: 3}
}

// Publish marshals ev and sends it as a persistent message, retrying
// transient broker failures with backoff.  Errors are logged and returned
// so the caller can ignore them.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	err = retry.Do(
		func() error { return p.publishOnce(ctx, body) },
		retry.Context(ctx),
		retry.Attempts(p.Attempts),
		retry.Delay(100*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		log.Warn("rabbitmq: publish failed", zap.String("type", ev.Type), zap.Error(err))
		return err
	}
	return nil
}

// dialTimeout bounds the TCP connect and AMQP handshake by ctx's deadline,
// falling back to the library default when ctx has none.
func dialTimeout(ctx context.Context) (time.Duration, error) {
	d := defaultDialTimeout
	if dl, ok := ctx.Deadline(); ok {
		d = time.Until(dl)
		if d <= 0 {
			return 0, context.DeadlineExceeded
		}
	}
	return d, ctx.Err()
}

const defaultDialTimeout = 30 * time.Second

func (p *Publisher) publishOnce(ctx context.Context, body []byte) error {
	timeout, err := dialTimeout(ctx)
	if err != nil {
		return errors.Wrap(err, "dial")
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Locale: "en_US",
		Dial:   amqp.DefaultDial(timeout),
	})
	if err != nil {
		return errors.Wrap(err, "dial")
	}
	defer func() { _ = conn.Close() }()
	// channel open and queue declare have no deadline of their own
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "channel open")
	}
	defer func() { _ = ch.Close() }()

	if _, err := declare(ch, p.Queue); err != nil {
		return err
	}

	return errors.Wrap(ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	), "publish")
}

// declare makes sure the durable queue exists; it is idempotent.
func declare(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(name, true, false, false, false, nil)
	return q, errors.Wrap(err, "queue declare")
}

// Nop discards events.  It is used when EVENTS_ENABLED is off.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
