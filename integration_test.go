package main

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testServer starts a Reactor bound to an ephemeral port in the
// background and returns its address, ready for clients to dial.
func testServer(t *testing.T, password string) string {
	t.Helper()

	config := &ServerConfig{Port: 0, Password: password, ServerName: "ircserv"}
	server := NewServer(config)
	reactor := NewReactor(server)

	go func() {
		if err := reactor.Run(); err != nil {
			t.Logf("reactor exited: %s", err)
		}
	}()

	var port int
	select {
	case port = <-reactor.Ready:
	case <-time.After(2 * time.Second):
		t.Fatal("reactor never became ready")
	}

	t.Cleanup(server.requestShutdown)

	return fmt.Sprintf("127.0.0.1:%d", port)
}

// ircClient is a minimal line-oriented test client over a raw TCP
// connection, in the style of the harness clients used elsewhere in
// this dependency's test ecosystem.
type ircClient struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dial(t *testing.T, addr string) *ircClient {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err, "dial")
	t.Cleanup(func() { _ = conn.Close() })

	return &ircClient{t: t, conn: conn, r: bufio.NewReader(conn)}
}

func (c *ircClient) send(line string) {
	c.t.Helper()
	_, err := c.conn.Write([]byte(line + "\r\n"))
	require.NoError(c.t, err, "write %q", line)
}

func (c *ircClient) recvLine() string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := c.r.ReadString('\n')
	require.NoError(c.t, err, "read line")
	return line
}

// expect reads lines until one contains want, failing the test if none
// do before the read deadline.
func (c *ircClient) expect(want string) string {
	c.t.Helper()
	for i := 0; i < 10; i++ {
		line := c.recvLine()
		if strings.Contains(line, want) {
			return line
		}
	}
	c.t.Fatalf("never saw a line containing %q", want)
	return ""
}

func register(c *ircClient, password, nick string) {
	c.send("PASS :" + password)
	c.send("NICK " + nick)
	c.send("USER " + nick + " 0 * :" + nick)
	c.expect(" 001 " + nick + " ")
}

func TestAuthSuccess(t *testing.T) {
	addr := testServer(t, "secret")
	c := dial(t, addr)

	c.send("PASS :secret")
	c.send("NICK alice")
	c.send("USER alice 0 * :Alice")

	c.expect(" 001 alice ")
}

func TestAuthExhaustion(t *testing.T) {
	addr := testServer(t, "secret")
	c := dial(t, addr)

	c.send("PASS :wrong")
	c.expect(" 464 ")
	c.send("PASS :wrong")
	c.expect(" 464 ")
	c.send("PASS :wrong")
	c.expect(" 464 ")

	// The connection should be torn down after the third failure: the
	// next read should hit EOF (or an ERROR line first) rather than hang.
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 512)
	_, _ = c.conn.Read(buf)
}

func TestJoinAndMessage(t *testing.T) {
	addr := testServer(t, "secret")
	a := dial(t, addr)
	b := dial(t, addr)

	register(a, "secret", "alice")
	register(b, "secret", "bob")

	a.send("JOIN #r")
	a.expect("JOIN #r")

	b.send("JOIN #r")
	b.expect("JOIN #r")
	a.expect("bob!bob@localhost JOIN #r")

	b.send("PRIVMSG #r :hi there")
	line := a.expect("PRIVMSG #r :hi there")
	require.Contains(t, line, "bob!bob@localhost")
}

func TestInviteOnlyBypass(t *testing.T) {
	addr := testServer(t, "secret")
	a := dial(t, addr)
	b := dial(t, addr)

	register(a, "secret", "alice")
	register(b, "secret", "bob")

	a.send("JOIN #priv")
	a.expect("JOIN #priv")

	a.send("MODE #priv +i")
	a.expect("MODE #priv +i")

	b.send("JOIN #priv")
	b.expect(" 473 ")

	a.send("INVITE bob #priv")
	b.expect("INVITE bob #priv")

	b.send("JOIN #priv")
	b.expect("JOIN #priv")
}

func TestKick(t *testing.T) {
	addr := testServer(t, "secret")
	a := dial(t, addr)
	b := dial(t, addr)

	register(a, "secret", "alice")
	register(b, "secret", "bob")

	a.send("JOIN #r")
	a.expect("JOIN #r")
	b.send("JOIN #r")
	b.expect("JOIN #r")
	a.expect("bob!bob@localhost JOIN #r")

	a.send("KICK #r bob :kicked for spamming")
	a.expect("KICK #r bob :kicked for spamming")
	b.expect("KICK #r bob :kicked for spamming")
}

func TestModeKey(t *testing.T) {
	addr := testServer(t, "secret")
	a := dial(t, addr)
	c := dial(t, addr)

	register(a, "secret", "alice")
	register(c, "secret", "carol")

	a.send("JOIN #r")
	a.expect("JOIN #r")

	a.send("MODE #r +k hunter2")
	a.expect("MODE #r +k hunter2")

	c.send("JOIN #r wrong")
	c.expect(" 475 ")

	c.send("JOIN #r hunter2")
	c.expect("JOIN #r")
}
