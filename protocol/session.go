// File: protocol/session.go
// Package protocol implements the message-framed WebSocket session used by
// both sides of the echo benchmark.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Session wraps one upgraded connection. Framing and the upgrade handshake
// are delegated to gorilla/websocket; the session adds the reusable inbound
// buffer, the one-read/one-write in-flight guards and a close that happens
// exactly once.

package protocol

import (
	"bytes"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/momentics/hioload-wsbench/api"
)

// Message types, re-exported so callers need not import the framing library.
const (
	TextMessage   = websocket.TextMessage
	BinaryMessage = websocket.BinaryMessage
)

// CloseTimeout bounds the normal-closure exchange in Close.
const CloseTimeout = 5 * time.Second

// Session is an upgraded WebSocket connection.
type Session struct {
	ws   *websocket.Conn
	ep   api.Transport
	role api.Role

	buf         bytes.Buffer
	gotType     int
	writeType   int
	idleTimeout time.Duration

	reading atomic.Bool
	writing atomic.Bool
	broken  atomic.Bool // a read or write failed

	stopPing  chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func newSession(ws *websocket.Conn, ep api.Transport, role api.Role, idle time.Duration) *Session {
	ws.EnableWriteCompression(false)
	return &Session{
		ws:          ws,
		ep:          ep,
		role:        role,
		gotType:     BinaryMessage,
		writeType:   BinaryMessage,
		idleTimeout: idle,
	}
}

// keepAlive pings the peer every idle/2. Each pong, like each Read, moves
// the read deadline a full idle period ahead, so only a peer that stays
// silent for idle is timed out.
func (s *Session) keepAlive() {
	idle := s.idleTimeout
	if idle <= 0 {
		return
	}
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(idle))
	})
	s.stopPing = make(chan struct{})
	go func(stop <-chan struct{}) {
		t := time.NewTicker(idle / 2)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				if err := s.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(idle/2)); err != nil {
					return
				}
			}
		}
	}(s.stopPing)
}

// Transport returns the endpoint the session runs on.
func (s *Session) Transport() api.Transport { return s.ep }

// SetBinary selects binary (true) or text (false) framing for Write.
func (s *Session) SetBinary(binary bool) {
	if binary {
		s.writeType = BinaryMessage
	} else {
		s.writeType = TextMessage
	}
}

// Binary reports the framing used by Write.
func (s *Session) Binary() bool { return s.writeType == BinaryMessage }

// GotText reports whether the last received message was a text frame.
func (s *Session) GotText() bool { return s.gotType == TextMessage }

// Bytes returns the inbound buffer. The slice is valid until the next
// Read or Reset.
func (s *Session) Bytes() []byte { return s.buf.Bytes() }

// Len returns the number of buffered inbound bytes.
func (s *Session) Len() int { return s.buf.Len() }

// Reset clears the inbound buffer, keeping its capacity.
func (s *Session) Reset() { s.buf.Reset() }

// Read receives one complete message and appends it to the inbound buffer.
// A second Read while one is outstanding fails with api.ErrOperationInFlight.
func (s *Session) Read() (int, error) {
	if !s.reading.CompareAndSwap(false, true) {
		return 0, api.NewError(api.ErrCodeRead, "read", api.ErrOperationInFlight)
	}
	defer s.reading.Store(false)

	if s.idleTimeout > 0 {
		if err := s.ws.SetReadDeadline(time.Now().Add(s.idleTimeout)); err != nil {
			return 0, api.NewError(api.ErrCodeRead, "read", err)
		}
	}
	mt, r, err := s.ws.NextReader()
	if err != nil {
		s.broken.Store(true)
		return 0, api.NewError(api.ErrCodeRead, "read", err)
	}
	n, err := s.buf.ReadFrom(r)
	if err != nil {
		s.broken.Store(true)
		return int(n), api.NewError(api.ErrCodeRead, "read", err)
	}
	s.gotType = mt
	return int(n), nil
}

// Write sends p as exactly one frame using the current framing flag.
// A second Write while one is outstanding fails with api.ErrOperationInFlight.
func (s *Session) Write(p []byte) error {
	if !s.writing.CompareAndSwap(false, true) {
		return api.NewError(api.ErrCodeWrite, "write", api.ErrOperationInFlight)
	}
	defer s.writing.Store(false)

	if err := s.ws.WriteMessage(s.writeType, p); err != nil {
		s.broken.Store(true)
		return api.NewError(api.ErrCodeWrite, "write", err)
	}
	return nil
}

// Echo writes the inbound buffer back with the framing of the message it
// holds, then clears it. The buffer is written in place, so it is cleared
// only after the write has completed.
func (s *Session) Echo() error {
	s.SetBinary(!s.GotText())
	if err := s.Write(s.buf.Bytes()); err != nil {
		return err
	}
	s.buf.Reset()
	return nil
}

// Close sends a normal-closure frame, waits briefly for the peer's close
// reply when no read is outstanding and no I/O has failed, and releases the
// connection. Only the first call has any effect.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.stopPing != nil {
			close(s.stopPing)
		}
		deadline := time.Now().Add(CloseTimeout)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		err := s.ws.WriteControl(websocket.CloseMessage, msg, deadline)
		if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			s.closeErr = api.NewError(api.ErrCodeWrite, "close", err)
		}
		if err == nil && !s.broken.Load() && s.reading.CompareAndSwap(false, true) {
			s.drainUntilClose(deadline)
		}
		if cerr := s.ws.Close(); cerr != nil && s.closeErr == nil && !isClosedConn(cerr) {
			s.closeErr = cerr
		}
		s.ep.Close()
	})
	return s.closeErr
}

// drainUntilClose discards inbound frames until the peer answers the close.
func (s *Session) drainUntilClose(deadline time.Time) {
	_ = s.ws.SetReadDeadline(deadline)
	for {
		if _, r, err := s.ws.NextReader(); err != nil {
			return
		} else if _, err := io.Copy(io.Discard, r); err != nil {
			return
		}
	}
}

// IsClosed reports whether err is the peer closing the session with a close
// frame. Abnormal closure (connection dropped without a close frame) is not
// a clean close.
func IsClosed(err error) bool {
	var ce *websocket.CloseError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code != websocket.CloseAbnormalClosure
}

func isClosedConn(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
