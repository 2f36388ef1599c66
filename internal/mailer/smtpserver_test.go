package mailer

import (
	"bufio"
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

// fakeSMTPServer accepts one connection and speaks enough ESMTP for go-mail:
// EHLO, optional STARTTLS, AUTH, MAIL, RCPT, DATA, NOOP, RSET and QUIT.
type fakeSMTPServer struct {
	host     string
	port     int
	commands chan string
	data     chan string
}

// testTLSConfigs returns a server config and a client config that trusts it,
// using the certificate httptest issues for 127.0.0.1.
func testTLSConfigs(t *testing.T) (server, client *tls.Config) {
	t.Helper()
	ts := httptest.NewTLSServer(nil)
	defer ts.Close()

	pool := x509.NewCertPool()
	pool.AddCert(ts.Certificate())
	server = &tls.Config{Certificates: ts.TLS.Certificates}
	client = &tls.Config{RootCAs: pool, ServerName: "127.0.0.1", MinVersion: tls.VersionTLS12}
	return server, client
}

// startFakeSMTPServer advertises STARTTLS only when tlsCfg is non-nil.
func startFakeSMTPServer(t *testing.T, tlsCfg *tls.Config) *fakeSMTPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	s := &fakeSMTPServer{
		host:     host,
		port:     port,
		commands: make(chan string, 64),
		data:     make(chan string, 1),
	}

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		s.serve(conn, tlsCfg)
	}()
	return s
}

func (s *fakeSMTPServer) serve(conn net.Conn, tlsCfg *tls.Config) {
	defer conn.Close()
	defer close(s.commands)

	secure := false
	r := bufio.NewReader(conn)
	reply := func(lines ...string) {
		_, _ = conn.Write([]byte(strings.Join(lines, "\r\n") + "\r\n"))
	}

	reply("220 localhost ESMTP ready")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
		s.commands <- verb

		switch verb {
		case "EHLO", "HELO":
			lines := []string{"250-localhost"}
			if tlsCfg != nil && !secure {
				lines = append(lines, "250-STARTTLS")
			}
			lines = append(lines, "250-AUTH PLAIN LOGIN", "250 8BITMIME")
			reply(lines...)
		case "STARTTLS":
			reply("220 2.0.0 ready to start TLS")
			tc := tls.Server(conn, tlsCfg)
			if err := tc.Handshake(); err != nil {
				return
			}
			conn = tc
			r = bufio.NewReader(conn)
			secure = true
		case "AUTH":
			reply("235 2.7.0 authentication successful")
		case "DATA":
			reply("354 end data with <CR><LF>.<CR><LF>")
			var body strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				body.WriteString(l)
			}
			s.data <- body.String()
			reply("250 2.0.0 queued")
		case "QUIT":
			reply("221 2.0.0 bye")
			return
		default:
			reply("250 2.0.0 ok")
		}
	}
}

// drainCommands returns the verbs the client sent, stopping when the session
// ends or no command arrives within idle.
func (s *fakeSMTPServer) drainCommands(idle time.Duration) []string {
	var out []string
	for {
		select {
		case c, ok := <-s.commands:
			if !ok {
				return out
			}
			out = append(out, c)
		case <-time.After(idle):
			return out
		}
	}
}
