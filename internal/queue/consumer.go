package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "sync"
    "time"

    "github.com/labstack/gommon/log"
    amqp "github.com/rabbitmq/amqp091-go"
)

// BookingLogFile is the file, under the consumer's log directory, that
// receives one line per confirmed booking.
const BookingLogFile = "booking.log"

// DeclareBookingQueue declares the durable booking.confirmed queue.  The
// declaration is idempotent and shared by publisher and consumer.
func DeclareBookingQueue(ch *amqp.Channel) error {
    _, err := ch.QueueDeclare(
        BookingConfirmedQueue, // name
        true,                  // durable
        false,                 // autoDelete
        false,                 // exclusive
        false,                 // noWait
        nil,                   // args
    )
    return err
}

// Consumer drains booking.confirmed and appends each event to
// <LogDir>/booking.log.
type Consumer struct {
    URL    string
    LogDir string
    Logger *log.Logger

    mu sync.Mutex // serializes writes to the log file
}

// NewConsumer returns a Consumer writing under logDir ("logs" when empty).
func NewConsumer(url, logDir string) *Consumer {
    if logDir == "" {
        logDir = "logs"
    }
    l := log.New("booking-consumer")
    l.SetHeader("${time_rfc3339} ${level} ${prefix}")
    return &Consumer{URL: url, LogDir: logDir, Logger: l}
}

// Run connects to RabbitMQ and consumes until ctx is cancelled.  Broker
// failures are retried with exponential backoff capped at 30s.  A message
// that cannot be handled is rejected without requeue so it cannot loop.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Logger.Warnf("failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Logger.Warnf("consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
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

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Logger.Warnf("set QoS failed: %v", err)
    }
    if err := DeclareBookingQueue(ch); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(BookingConfirmedQueue, "", false, false, false, false, nil)
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
            if err := c.Handle(d.Body); err != nil {
                c.Logger.Errorf("handle message failed: %v", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// Handle decodes one message body and appends its log line.
func (c *Consumer) Handle(body []byte) error {
    var ev BookingConfirmedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.BookingID <= 0 {
        return fmt.Errorf("event without booking_id")
    }

    c.mu.Lock()
    defer c.mu.Unlock()
    if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", c.LogDir, err)
    }
    f, err := os.OpenFile(filepath.Join(c.LogDir, BookingLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLogLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLogLine renders an event as a single human-readable line.
func FormatLogLine(ev BookingConfirmedEvent) string {
    return fmt.Sprintf("[%s] Booking confirmed | booking_id=%d | guest_id=%d | guest=%q | email=%s | room=%q | stay=%s..%s (%d nights) | total=%d cents %s | intent=%s\n",
        ev.ConfirmedAt, ev.BookingID, ev.GuestID, ev.GuestName, ev.GuestEmail, ev.RoomType,
        ev.CheckIn, ev.CheckOut, ev.Nights, ev.TotalAmountCents, ev.Currency, ev.PaymentIntentID)
}
