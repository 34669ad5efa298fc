package redis

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linksaver/internal/logger"
)

func validOptions() Options {
	return Options{
		Addr:           "localhost:6379",
		ConnectTimeout: time.Second,
		RetryInterval:  10 * time.Millisecond,
		MaxWait:        50 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"valid", func(*Options) {}, false},
		{"no addr", func(o *Options) { o.Addr = "" }, true},
		{"no connect timeout", func(o *Options) { o.ConnectTimeout = 0 }, true},
		{"no retry interval", func(o *Options) { o.RetryInterval = 0 }, true},
		{"no max wait", func(o *Options) { o.MaxWait = -1 }, true},
		{"no ping timeout", func(o *Options) { o.PingTimeout = 0 }, true},
		{"negative warn threshold", func(o *Options) { o.WarnThreshold = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOptions()
			tt.mutate(&o)
			err := o.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNextWait(t *testing.T) {
	if got := nextWait(time.Second, 10*time.Second); got != 2*time.Second {
		t.Errorf("nextWait = %v, want 2s", got)
	}
	if got := nextWait(8*time.Second, 10*time.Second); got != 10*time.Second {
		t.Errorf("nextWait = %v, want capped 10s", got)
	}
}

func TestConnectGivesUp(t *testing.T) {
	// grab a free port and release it so nothing is listening there
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	opts := validOptions()
	opts.Addr = addr
	opts.ConnectTimeout = 200 * time.Millisecond

	start := time.Now()
	client, err := Connect(context.Background(), opts, logger.NewNop())
	if err == nil {
		_ = client.Close()
		t.Fatal("expected connection error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Connect took %v, expected to stop near the connect timeout", elapsed)
	}
}

func TestConnectInvalidOptions(t *testing.T) {
	_, err := Connect(context.Background(), Options{}, logger.NewNop())
	if err == nil {
		t.Fatal("expected validation error")
	}
}
