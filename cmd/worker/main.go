// Command worker consumes booking.confirmed events and appends one line per
// confirmed booking to the booking log.
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/hotel-booking-web/internal/config"
	"github.com/iliyamo/hotel-booking-web/internal/queue"
	"github.com/iliyamo/hotel-booking-web/internal/service"
)

func main() {
	cfg := config.LoadWorker()
	url := cfg.RabbitURL
	if url == "" {
		url = service.DefaultAMQPURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := queue.NewConsumer(url, cfg.LogDir)
	c.Logger.SetLevel(config.ParseLogLevel(cfg.LogLevel))
	c.Logger.Infof("consuming %s, writing to %s", queue.BookingConfirmedQueue, cfg.LogDir)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
