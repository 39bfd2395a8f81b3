package util

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestListenAndServeStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ListenAndServe(ctx, "127.0.0.1:0", http.NotFoundHandler()) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ListenAndServe: %s", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestListenAndServeAddressInUse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %s", err)
	}
	defer l.Close()
	if err := ListenAndServe(context.Background(), l.Addr().String(), http.NotFoundHandler()); err == nil {
		t.Fatal("no error for an address in use")
	}
}

func TestSetLogLevel(t *testing.T) {
	defer logrus.SetLevel(logrus.GetLevel())
	if err := SetLogLevel("debug"); err != nil {
		t.Fatalf("SetLogLevel: %s", err)
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Errorf("level %s", logrus.GetLevel())
	}
	if err := SetLogLevel("loud"); err == nil {
		t.Error("no error for unknown level")
	}
}
