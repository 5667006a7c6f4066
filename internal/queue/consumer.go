// Package queue contains the background consumer that listens to the
// review.submitted queue and writes one line per review to logs/review.log.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/review-catalog/internal/logging"
)

// ReviewLogFile is the file, relative to the consumer's log directory, that
// events are appended to.
const ReviewLogFile = "review.log"

// StartReviewConsumer dials the broker at url, declares the review queue
// (durable) and appends every delivery to logDir/review.log.  Dial failures
// are retried with exponential backoff capped at 30s and a dropped connection
// is re-dialed.  It only returns, with ctx.Err(), once ctx is cancelled.
func StartReviewConsumer(ctx context.Context, url, logDir string) error {
	log := logging.With().Str("component", "review-consumer").Logger()
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = consumeLoop(ctx, conn, logDir)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Msg("consume loop ended, reconnecting")
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logDir string) error {
	log := logging.With().Str("component", "review-consumer").Logger()
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("set QoS failed")
	}

	if _, err := ch.QueueDeclare(ReviewQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(ReviewQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := HandleMessage(logDir, d.Body); err != nil {
				log.Error().Err(err).Msg("handle message failed")
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one ReviewSubmittedEvent and appends it to
// logDir/review.log, creating the directory when needed.
func HandleMessage(logDir string, body []byte) error {
	var ev ReviewSubmittedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", logDir, err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, ReviewLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders an event as a single human-friendly log line.
func FormatLine(ev ReviewSubmittedEvent) string {
	return fmt.Sprintf("[%s] Review submitted | user_id=%s | user=%s | movie_id=%s | movie=%s | score=%d | movie_avg=%s | reviews=%d | tier=%s\n",
		ev.SubmittedAt, ev.UserID, strconv.Quote(ev.UserName), ev.MovieID, strconv.Quote(ev.MovieTitle),
		ev.Score, strconv.FormatFloat(ev.MovieAverage, 'f', 2, 64), ev.ReviewCount, ev.Tier)
}
