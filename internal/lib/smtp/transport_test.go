package smtp

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/vpn-store/internal/config"
)

// fakeServer отвечает как SMTP сервер без поддержки STARTTLS.
func fakeServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		_, _ = io.WriteString(conn, "220 localhost ESMTP\r\n")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"):
				_, _ = io.WriteString(conn, "250-localhost\r\n250 AUTH PLAIN\r\n")
			case strings.HasPrefix(cmd, "QUIT"):
				_, _ = io.WriteString(conn, "221 bye\r\n")
				return
			default:
				_, _ = io.WriteString(conn, "250 ok\r\n")
			}
		}
	}()
	return ln.Addr().String()
}

func TestTransport_RequiresSTARTTLS(t *testing.T) {
	host, port, err := net.SplitHostPort(fakeServer(t))
	require.NoError(t, err)

	tr := NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port, SMTPUser: "noreply@example.com"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	client, err := tr.Connect()
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "STARTTLS")
	assert.Equal(t, "noreply@example.com", tr.GetSMTPUser())
}

func TestTransport_DialError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port, _ := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, ln.Close())

	tr := NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err = tr.Connect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial")
}

var _ TransportInterface = (*Transport)(nil)
