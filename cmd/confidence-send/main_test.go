package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tailored-agentic-units/eventsender/confidence"
	"github.com/tailored-agentic-units/eventsender/value"
)

type recordingSender struct {
	mu     sync.Mutex
	names  []string
	ctxs   []value.Struct
	onSend func()
}

func (r *recordingSender) Send(name string, message, context value.Struct) error {
	r.mu.Lock()
	r.names = append(r.names, name)
	r.ctxs = append(r.ctxs, context)
	onSend := r.onSend
	r.mu.Unlock()

	if onSend != nil {
		onSend()
	}
	return nil
}

func (r *recordingSender) Flush()       {}
func (r *recordingSender) Close() error { return nil }

func TestParseContext(t *testing.T) {
	tests := []struct {
		pair    string
		key     string
		want    value.Value
		wantErr bool
	}{
		{pair: "user=u-1", key: "user", want: value.String("u-1")},
		{pair: "n=42", key: "n", want: value.Number(42)},
		{pair: "ok=true", key: "ok", want: value.Bool(true)},
		{pair: `quoted="x=y"`, key: "quoted", want: value.String("x=y")},
		{pair: "empty=", key: "empty", want: value.String("")},
		{pair: "missing", wantErr: true},
		{pair: "=v", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.pair, func(t *testing.T) {
			key, got, err := parseContext(tt.pair)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseContext failed: %v", err)
			}
			if key != tt.key {
				t.Errorf("got key %q, want %q", key, tt.key)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPump(t *testing.T) {
	sender := &recordingSender{}
	client, err := confidence.New(nil, confidence.WithSender(sender))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	client.UpdateContext("run", value.String("r1"))

	input := strings.Join([]string{
		`{"name":"first","message":{"k":1}}`,
		``,
		`not json`,
		`{"name":"","message":{}}`,
		`{"name":"second"}`,
	}, "\n")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sent, err := pump(context.Background(), client, strings.NewReader(input), logger)
	if err != nil {
		t.Fatalf("pump failed: %v", err)
	}

	if sent != 3 {
		t.Errorf("got sent %d, want 3", sent)
	}
	want := []string{"first", "", "second"}
	if strings.Join(sender.names, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", sender.names, want)
	}
	for i, c := range sender.ctxs {
		if v, _ := c.Get("run"); !v.Equal(value.String("r1")) {
			t.Errorf("event %d: got run=%v, want r1", i, v)
		}
	}
}

func TestPump_Cancelled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	input := strings.Repeat(`{"name":"e","message":{}}`+"\n", 10)

	for i := range 200 {
		ctx, cancel := context.WithCancel(context.Background())
		sender := &recordingSender{onSend: func() {
			cancel()
			time.Sleep(time.Millisecond)
		}}
		client, err := confidence.New(nil, confidence.WithSender(sender))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		type result struct {
			sent int
			err  error
		}
		done := make(chan result, 1)
		go func() {
			sent, err := pump(ctx, client, strings.NewReader(input), logger)
			done <- result{sent, err}
		}()

		select {
		case r := <-done:
			if r.err != nil {
				t.Fatalf("iteration %d: got error %v, want nil", i, r.err)
			}
			if r.sent < 1 || r.sent > 10 {
				t.Fatalf("iteration %d: got sent %d, want 1..10", i, r.sent)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("iteration %d: pump did not return after cancellation", i)
		}
		cancel()
	}
}
