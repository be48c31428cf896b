package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tailored-agentic-units/eventsender/confidence"
	"github.com/tailored-agentic-units/eventsender/observability"
	"github.com/tailored-agentic-units/eventsender/value"
)

// line is one NDJSON input record.
type line struct {
	Name    string       `json:"name"`
	Message value.Struct `json:"message"`
}

func main() {
	var (
		configFile    = pflag.String("config", "", "Path to config file, .json or .yaml")
		clientSecret  = pflag.String("client-secret", "", "Client secret (overrides config)")
		endpoint      = pflag.String("endpoint", "", "Events service base URL (overrides config)")
		protocol      = pflag.String("protocol", "", "Wire protocol: grpc, grpcweb or connect (overrides config)")
		compression   = pflag.String("compression", "", "Request compression: gzip, zstd or lz4 (overrides config)")
		batchSize     = pflag.Int("batch-size", 0, "Events per batch (overrides config)")
		flushInterval = pflag.Int("flush-interval-ms", 0, "Periodic flush interval in milliseconds (overrides config)")
		contextPairs  = pflag.StringArray("context", nil, "Context entry key=value; repeatable, JSON values are decoded")
		verbose       = pflag.BoolP("verbose", "v", false, "Enable verbose logging to stderr")
	)
	pflag.Parse()

	cfg := confidence.DefaultConfig()
	if *configFile != "" {
		loaded, err := confidence.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	cfg.Merge(&confidence.Config{ClientSecret: *clientSecret})
	if *endpoint != "" {
		cfg.Transport.Endpoint = *endpoint
	}
	if *protocol != "" {
		cfg.Transport.Protocol = *protocol
	}
	if *compression != "" {
		cfg.Transport.Compression = *compression
	}
	if *batchSize > 0 {
		cfg.Engine.BatchSize = *batchSize
	}
	if *flushInterval > 0 {
		cfg.Engine.FlushIntervalMS = *flushInterval
	}

	if cfg.ClientSecret == "" && cfg.Upload.ClientSecret == "" {
		fmt.Fprintln(os.Stderr, "Usage: confidence-send --client-secret <secret> [flags] < events.ndjson")
		pflag.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	observability.RegisterObserver("slog", observability.NewSlogObserver(logger))

	client, err := confidence.New(&cfg)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	for _, pair := range *contextPairs {
		key, v, err := parseContext(pair)
		if err != nil {
			log.Fatalf("Invalid --context %q: %v", pair, err)
		}
		client.UpdateContext(key, v)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sent, readErr := pump(ctx, client, os.Stdin, logger)

	if err := client.Close(); err != nil {
		log.Fatalf("Failed to close client: %v", err)
	}
	if readErr != nil {
		log.Fatalf("Failed to read events: %v", readErr)
	}

	logger.Info("done", "sent", sent)
}

// pump sends every input record until EOF or cancellation. Malformed
// records are logged and skipped.
func pump(ctx context.Context, client *confidence.Confidence, in io.Reader, logger *slog.Logger) (int, error) {
	lines := make(chan []byte)
	errs := make(chan error, 1)

	// errs always receives exactly one value before lines is closed.
	go func() {
		defer close(lines)
		errs <- scan(ctx, in, lines)
	}()

	sent := 0
	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			logger.Info("interrupted", "sent", sent)
			return sent, nil
		case b, ok := <-lines:
			if !ok {
				if err := <-errs; err != nil {
					return sent, err
				}
				if ctx.Err() != nil {
					logger.Info("interrupted", "sent", sent)
				}
				return sent, nil
			}
			if len(strings.TrimSpace(string(b))) == 0 {
				continue
			}

			var rec line
			if err := json.Unmarshal(b, &rec); err != nil {
				logger.Warn("skipping malformed record", "line", n, "error", err)
				continue
			}
			if err := client.Send(rec.Name, rec.Message); err != nil {
				logger.Warn("send rejected", "line", n, "name", rec.Name, "error", err)
				continue
			}
			sent++
		}
	}
}

// scan feeds copies of input lines to out. It returns nil when ctx is
// cancelled and the scanner error otherwise.
func scan(ctx context.Context, in io.Reader, out chan<- []byte) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		b := append([]byte(nil), scanner.Bytes()...)
		select {
		case out <- b:
		case <-ctx.Done():
			return nil
		}
	}
	return scanner.Err()
}

// parseContext splits key=value. A value that parses as JSON keeps its
// type; anything else is a string.
func parseContext(pair string) (string, value.Value, error) {
	key, raw, ok := strings.Cut(pair, "=")
	if !ok || key == "" {
		return "", value.Value{}, fmt.Errorf("expected key=value")
	}

	var v value.Value
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return key, value.String(raw), nil
	}
	return key, v, nil
}
