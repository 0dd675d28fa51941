// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package transport

import (
	"crypto/tls"

	"github.com/momentics/hioload-wsbench/api"
)

// Default certificate locations, relative to the working directory.
const (
	DefaultCertFile = "cert/test.crt"
	DefaultKeyFile  = "cert/test.key"
)

// LoadServerTLSConfig builds the server security context from a PEM
// certificate and key. Client certificates are never requested.
// The returned config is shared read-only by every secured session.
func LoadServerTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, api.NewError(api.ErrCodeCertificateLoad, "load_certificate", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		ClientAuth:   tls.NoClientCert,
	}, nil
}

// ClientTLSConfig builds the client security context. With insecure set
// the server certificate is accepted without verification, which is the
// harness default: benchmark servers run on self-signed certificates.
func ClientTLSConfig(serverName string, insecure bool) *tls.Config {
	return &tls.Config{
		ServerName:         serverName,
		InsecureSkipVerify: insecure, //nolint:gosec
		MinVersion:         tls.VersionTLS12,
	}
}
