package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/secondhand-bookstore/internal/log"
)

// Consumer drains the events queue into a single-line-per-event log file.
type Consumer struct {
	URL     string
	Queue   string
	LogPath string
}

func NewConsumer(url, queue, logPath string) *Consumer {
	return &Consumer{URL: url, Queue: queue, LogPath: logPath}
}

// Run connects and consumes until ctx is cancelled, reconnecting with
// exponential backoff (capped at 30s) whenever the broker goes away.  A
// message that cannot be handled is rejected without requeue so it cannot
// wedge the loop.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Warn("event-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("event-consumer: consume loop ended; reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "channel open")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("event-consumer: set QoS failed", zap.Error(err))
	}
	if _, err := declare(ch, c.Queue); err != nil {
		return err
	}
	msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "queue consume")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(d.Body); err != nil {
				log.Error("event-consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return errors.Wrap(err, "unmarshal")
	}
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return errors.Wrap(err, "mkdir logs")
	}
	f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "open log file")
	}
	defer f.Close()

	_, err = f.WriteString(FormatLine(ev))
	return errors.Wrap(err, "write log")
}

// FormatLine renders ev as one human-readable log line.
func FormatLine(ev Event) string {
	switch ev.Type {
	case PostingPurchased:
		return fmt.Sprintf("[%s] Posting purchased | post_id=%d | book_id=%d | title=%q | author=%q | price=%s\n",
			ev.OccurredAt, ev.PostID, ev.BookID, ev.Title, ev.Author, ev.Price)
	case SubmissionCreated:
		return fmt.Sprintf("[%s] Submission created | sub_id=%d | title=%q | author=%q | price=%s\n",
			ev.OccurredAt, ev.SubID, ev.Title, ev.Author, ev.Price)
	case SubmissionApproved:
		return fmt.Sprintf("[%s] Submission approved | sub_id=%d | post_id=%d | book_id=%d | new_book=%t | title=%q | author=%q | price=%s\n",
			ev.OccurredAt, ev.SubID, ev.PostID, ev.BookID, ev.NewBook, ev.Title, ev.Author, ev.Price)
	case SubmissionRejected:
		return fmt.Sprintf("[%s] Submission rejected | sub_id=%d\n", ev.OccurredAt, ev.SubID)
	}
	return fmt.Sprintf("[%s] %s\n", ev.OccurredAt, ev.Type)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
