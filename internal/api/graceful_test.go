package api

import (
	"net"
	"net/http"
	"os"
	"testing"
	"time"
)

func TestHTTPServerAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	srv := NewHTTPServer(ln.Addr().String(), http.NewServeMux())
	go func(s *http.Server, l net.Listener) { _ = s.Serve(l) }(srv, ln)

	if err := GracefulShutdown(srv, time.Second); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
}

func TestSignalHandler(t *testing.T) {
	ch := SetupSignalHandler()
	if ch == nil {
		t.Fatal("expected a signal channel")
	}

	go func() { ch <- os.Interrupt }()
	sig := WaitForSignal(ch)
	if sig != os.Interrupt {
		t.Fatalf("expected interrupt, got %v", sig)
	}
}
