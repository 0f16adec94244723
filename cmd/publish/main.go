// Command publish sends an envelope file to a topic, for replays and manual testing.
// The envelope must decode, and is keyed by its channel when it has one.
package main

import (
	"chat-aggregator/broker"
	"chat-aggregator/domain/event"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mama165/sdk-go/logs"
)

func main() {
	brokers := flag.String("brokers", "localhost:9092", "Comma separated broker addresses")
	topic := flag.String("topic", "chat", "Destination topic")
	file := flag.String("file", "", "Path to a JSON envelope, - for stdin")
	timeout := flag.Duration("timeout", 10*time.Second, "Publish timeout")
	flag.Parse()

	if err := run(*brokers, *topic, *file, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(brokers, topic, file string, timeout time.Duration) error {
	raw, err := read(file)
	if err != nil {
		return err
	}
	evt, err := event.Decode(raw)
	if err != nil {
		return err
	}

	var key []byte
	if scoped, ok := evt.(event.ChannelScoped); ok {
		key = []byte(scoped.ChannelID())
	}

	log := logs.GetLoggerFromString("INFO")
	writer := broker.NewWriter(log, strings.Split(brokers, ","))
	defer writer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err = writer.Publish(ctx, topic, key, raw); err != nil {
		return err
	}
	h := evt.EventHeader()
	log.Info("Envelope published", "topic", topic, "type", h.Type, "event_id", h.ID)
	return nil
}

func read(file string) ([]byte, error) {
	switch file {
	case "":
		return nil, fmt.Errorf("-file is required")
	case "-":
		return io.ReadAll(os.Stdin)
	default:
		return os.ReadFile(file)
	}
}
