package api_test

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/momentics/hioload-wsbench/api"
)

func TestErrorIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("dial: %w", api.NewError(api.ErrCodeConnect, "connect", io.EOF))
	if !errors.Is(err, api.ErrConnect) {
		t.Fatal("expected ErrConnect to match")
	}
	if errors.Is(err, api.ErrResolve) {
		t.Fatal("ErrResolve must not match a connect error")
	}
	if !errors.Is(err, io.EOF) {
		t.Fatal("cause must stay reachable through Unwrap")
	}
}

func TestErrorCodeAndOp(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", api.NewError(api.ErrCodeBind, "set_option", io.ErrClosedPipe))
	if got := api.CodeOf(err); got != api.ErrCodeBind {
		t.Errorf("CodeOf = %v, want bind", got)
	}
	if got := api.OpOf(err); got != "set_option" {
		t.Errorf("OpOf = %q, want set_option", got)
	}
	if got := api.CodeOf(io.EOF); got != api.ErrCodeOK {
		t.Errorf("CodeOf(plain error) = %v, want ok", got)
	}
	if got := api.OpOf(nil); got != "" {
		t.Errorf("OpOf(nil) = %q", got)
	}
}

func TestErrorMessage(t *testing.T) {
	cases := []struct {
		err  *api.Error
		want string
	}{
		{&api.Error{Code: api.ErrCodeRead}, "read error"},
		{&api.Error{Code: api.ErrCodeRead, Op: "read"}, "read: read error"},
		{&api.Error{Code: api.ErrCodeWrite, Err: io.EOF}, "EOF"},
		{api.NewError(api.ErrCodeHandshake, "handshake", io.EOF), "handshake: EOF"},
	}
	for _, c := range cases {
		if got := c.err.Error(); got != c.want {
			t.Errorf("Error() = %q, want %q", got, c.want)
		}
	}
	if s := api.ErrorCode(42).String(); s != "code(42)" {
		t.Errorf("unknown code string = %q", s)
	}
	if s := api.ErrCodeCertificateLoad.String(); s != "certificate load" {
		t.Errorf("certificate load string = %q", s)
	}
}

func TestModeAndRoleNames(t *testing.T) {
	if api.ModePlain.String() != "plain" || api.ModeSecured.String() != "ssl" {
		t.Fatalf("mode names: %s %s", api.ModePlain, api.ModeSecured)
	}
	if api.RoleClient.String() != "client" || api.RoleServer.String() != "server" {
		t.Fatalf("role names: %s %s", api.RoleClient, api.RoleServer)
	}
}

func TestFailureFunc(t *testing.T) {
	var gotOp string
	var sink api.FailureSink = api.FailureFunc(func(op string, err error) { gotOp = op })
	sink.Fail("accept", io.EOF)
	if gotOp != "accept" {
		t.Fatalf("op = %q", gotOp)
	}
}
