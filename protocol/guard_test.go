package protocol

import (
	"errors"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/momentics/hioload-wsbench/api"
	"github.com/momentics/hioload-wsbench/fake"
)

func TestInFlightGuards(t *testing.T) {
	a, b := fake.Pipe()
	defer a.Close()
	defer b.Close()

	s := newSession(&websocket.Conn{}, a, api.RoleClient, 0)

	s.reading.Store(true)
	if _, err := s.Read(); !errors.Is(err, api.ErrOperationInFlight) || !errors.Is(err, api.ErrRead) {
		t.Fatalf("second Read = %v, want in-flight read error", err)
	}
	s.writing.Store(true)
	if err := s.Write([]byte("x")); !errors.Is(err, api.ErrOperationInFlight) || !errors.Is(err, api.ErrWrite) {
		t.Fatalf("second Write = %v, want in-flight write error", err)
	}
}
