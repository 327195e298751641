// Command events tails the EVENTS JetStream stream and prints each domain
// event as a JSON line.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"turingtest-be/internal/config"
	"turingtest-be/pkg/events"
	pktNats "turingtest-be/pkg/nats"
)

func main() {
	subject := flag.String("subject", pktNats.SubjectPrefix+">", "subject filter, e.g. events.CHAT_CREATED")
	durable := flag.String("durable", "events-tail", "durable consumer name")
	flag.Parse()

	cfg := config.Load()
	if cfg.Infra.NatsURL == "" {
		log.Fatal("Error: NATS_URL is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub, err := pktNats.NewSubscriber(cfg.Infra.NatsURL)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer sub.Close()

	enc := json.NewEncoder(os.Stdout)
	err = sub.Subscribe(ctx, *subject, *durable, func(_ context.Context, event events.Event) error {
		return enc.Encode(event)
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	log.Printf("Tailing %s as %s", *subject, *durable)
	<-ctx.Done()
}
