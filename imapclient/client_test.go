package imapclient_test

import (
	"bufio"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/zhuhaoran/goimapengine"
	"github.com/zhuhaoran/goimapengine/imapclient"
)

// newScriptedClient wires a Client to one end of a net.Pipe and runs script
// against the other end in its own goroutine. script gets a line reader and
// the raw connection to script a fake server's behavior; spec.md treats a
// full mock IMAP server as a non-goal, so each test hand-scripts just the
// bytes it needs. Once script returns, every further command line (such as
// the CLOSE/LOGOUT that Disconnect sends) gets a tagged OK, so teardown does
// not block on the unbuffered pipe.
func newScriptedClient(t *testing.T, opts *imapclient.Options, script func(r *bufio.Reader, w io.Writer)) *imapclient.Client {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() { serverConn.Close() })

	go func() {
		r := bufio.NewReader(serverConn)
		script(r, serverConn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if fields := strings.Fields(line); len(fields) > 0 {
				io.WriteString(serverConn, fields[0]+" OK completed\r\n")
			}
		}
	}()

	return imapclient.New(clientConn, opts)
}

func writeLine(t *testing.T, w io.Writer, line string) {
	t.Helper()
	if _, err := io.WriteString(w, line+"\r\n"); err != nil {
		t.Errorf("server write failed: %v", err)
	}
}

func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	if err != nil {
		t.Errorf("server read failed: %v", err)
		return ""
	}
	return strings.TrimRight(line, "\r\n")
}

func TestGreetingAdvertisesCapabilities(t *testing.T) {
	c := newScriptedClient(t, nil, func(r *bufio.Reader, w io.Writer) {
		writeLine(t, w, "* OK [CAPABILITY IMAP4rev1 IDLE STARTTLS] ready for action")
	})
	defer c.Disconnect()

	if err := c.WaitState(imap.ConnStateNotAuthenticated, time.Second); err != nil {
		t.Fatalf("WaitState: %v", err)
	}
	if !c.HasCapability(imap.CapIdle) {
		t.Error("expected IDLE to be advertised inline in the greeting")
	}
	if !c.HasCapability(imap.CapStartTLS) {
		t.Error("expected STARTTLS to be advertised inline in the greeting")
	}
}

func TestConnectFetchesCapabilitiesAfterBareGreeting(t *testing.T) {
	c := newScriptedClient(t, nil, func(r *bufio.Reader, w io.Writer) {
		writeLine(t, w, "* OK IMAP4rev1 ready")

		line := readLine(t, r)
		if !strings.Contains(line, "CAPABILITY") {
			t.Errorf("expected a CAPABILITY round trip after a bare greeting, got %q", line)
			return
		}
		tag := strings.Fields(line)[0]
		writeLine(t, w, "* CAPABILITY IMAP4rev1 IDLE")
		writeLine(t, w, tag+" OK CAPABILITY completed")
	})
	defer c.Disconnect()

	if err := c.Connect(time.Second); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !c.HasCapability(imap.CapIdle) {
		t.Error("expected IDLE from the post-greeting CAPABILITY round trip")
	}
	if got, want := c.Version(), "IMAP4REV1"; got != want {
		t.Errorf("Version() = %q, want %q", got, want)
	}
}

func TestConnectSkipsCapabilityRoundTripWhenGreetingHasInlineCaps(t *testing.T) {
	c := newScriptedClient(t, nil, func(r *bufio.Reader, w io.Writer) {
		writeLine(t, w, "* OK [CAPABILITY IMAP4rev1 IDLE] ready")
	})
	defer c.Disconnect()

	if err := c.Connect(time.Second); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !c.HasCapability(imap.CapIdle) {
		t.Error("expected IDLE from the inline greeting capabilities")
	}
}

func TestConnectFailsWithoutARecognizedVersion(t *testing.T) {
	c := newScriptedClient(t, nil, func(r *bufio.Reader, w io.Writer) {
		writeLine(t, w, "* OK bare greeting")
		line := readLine(t, r)
		tag := strings.Fields(line)[0]
		writeLine(t, w, "* CAPABILITY AUTH=PLAIN")
		writeLine(t, w, tag+" OK CAPABILITY completed")
	})
	defer c.Disconnect()

	err := c.Connect(time.Second)
	if err == nil {
		t.Fatal("expected Connect to fail when no IMAP4rev1/IMAP4 token is advertised")
	}
	if _, ok := err.(*imap.ProtocolError); !ok {
		t.Errorf("err = %T, want *imap.ProtocolError", err)
	}
}

func TestLoginTransitionsState(t *testing.T) {
	c := newScriptedClient(t, nil, func(r *bufio.Reader, w io.Writer) {
		writeLine(t, w, "* OK [CAPABILITY IMAP4rev1] ready")
		line := readLine(t, r)
		if !strings.Contains(line, "LOGIN") {
			t.Errorf("server expected a LOGIN command, got %q", line)
		}
		fields := strings.Fields(line)
		tag := fields[0]
		writeLine(t, w, tag+" OK LOGIN completed")
	})
	defer c.Disconnect()

	if err := c.WaitState(imap.ConnStateNotAuthenticated, time.Second); err != nil {
		t.Fatalf("WaitState: %v", err)
	}
	resp, err := c.Login("alice", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Result != imap.ResultOK {
		t.Errorf("Result = %v, want OK", resp.Result)
	}
	if got := c.GetState(); got != imap.ConnStateAuthenticated {
		t.Errorf("state = %v, want Authenticated", got)
	}
}

func TestConcurrentAsyncCommandsWithDistinctUntaggedNames(t *testing.T) {
	c := newScriptedClient(t, nil, func(r *bufio.Reader, w io.Writer) {
		writeLine(t, w, "* OK [CAPABILITY IMAP4rev1] ready")

		line := readLine(t, r)
		tag := strings.Fields(line)[0]
		writeLine(t, w, tag+" OK LOGIN completed")

		line = readLine(t, r)
		tag = strings.Fields(line)[0]
		writeLine(t, w, "* 5 EXISTS")
		writeLine(t, w, tag+" OK [READ-WRITE] SELECT completed")

		// FETCH and SEARCH carry distinct untagged-response names, so the
		// registry must let both run concurrently without either blocking
		// the other; the two command lines may arrive in either order.
		seen := map[string]bool{}
		for len(seen) < 2 {
			line := readLine(t, r)
			fields := strings.Fields(line)
			tag := fields[0]
			switch {
			case strings.Contains(line, "SEARCH"):
				writeLine(t, w, "* SEARCH 1 2 3")
				writeLine(t, w, tag+" OK SEARCH completed")
				seen["SEARCH"] = true
			case strings.Contains(line, "FETCH"):
				writeLine(t, w, "* 1 FETCH (FLAGS (\\Seen))")
				writeLine(t, w, tag+" OK FETCH completed")
				seen["FETCH"] = true
			}
		}
	})
	defer c.Disconnect()

	if err := c.WaitState(imap.ConnStateNotAuthenticated, time.Second); err != nil {
		t.Fatalf("WaitState: %v", err)
	}
	if _, err := c.Login("alice", "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := c.Select("INBOX"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	errCh := make(chan error, 2)
	var searchResp, fetchResp imap.Response
	go func() {
		resp, err := c.UIDSearch("ALL")
		searchResp = resp
		errCh <- err
	}()
	go func() {
		resp, err := c.Fetch(imap.SeqSetNum(1), "(FLAGS)")
		fetchResp = resp
		errCh <- err
	}()

	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			t.Errorf("concurrent command failed: %v", err)
		}
	}
	if searchResp.Result != imap.ResultOK {
		t.Errorf("search result = %v, want OK", searchResp.Result)
	}
	if fetchResp.Result != imap.ResultOK {
		t.Errorf("fetch result = %v, want OK", fetchResp.Result)
	}
}

func TestCommandTimeout(t *testing.T) {
	opts := &imapclient.Options{CommandTimeout: 30 * time.Millisecond}
	c := newScriptedClient(t, opts, func(r *bufio.Reader, w io.Writer) {
		writeLine(t, w, "* OK [CAPABILITY IMAP4rev1] ready")
		_ = readLine(t, r) // read the NOOP but never answer it
	})
	defer c.Disconnect()

	if err := c.WaitState(imap.ConnStateNotAuthenticated, time.Second); err != nil {
		t.Fatalf("WaitState: %v", err)
	}
	_, err := c.Noop()
	if err == nil {
		t.Fatal("expected a CommandTimeout error")
	}
	if _, ok := err.(*imap.CommandTimeout); !ok {
		t.Errorf("err = %T (%v), want *imap.CommandTimeout", err, err)
	}
}

func TestTaggedNoSurfacesAsStatusError(t *testing.T) {
	c := newScriptedClient(t, nil, func(r *bufio.Reader, w io.Writer) {
		writeLine(t, w, "* PREAUTH [CAPABILITY IMAP4rev1] ready")
		line := readLine(t, r)
		tag := strings.Fields(line)[0]
		writeLine(t, w, tag+" NO [TRYCREATE] mailbox does not exist")
	})
	defer c.Disconnect()

	if err := c.WaitState(imap.ConnStateAuthenticated, time.Second); err != nil {
		t.Fatalf("WaitState: %v", err)
	}
	_, err := c.Select("does-not-exist")
	if err == nil {
		t.Fatal("expected a tagged NO to surface as an error")
	}
	ierr, ok := err.(*imap.Error)
	if !ok {
		t.Fatalf("err = %T, want *imap.Error", err)
	}
	if ierr.Type != imap.StatusResponseTypeNo {
		t.Errorf("Type = %v, want NO", ierr.Type)
	}
	if ierr.Code != imap.ResponseCodeTryCreate {
		t.Errorf("Code = %v, want TRYCREATE", ierr.Code)
	}
}

func TestUIDUnknownSubcommandIsRejectedLocally(t *testing.T) {
	c := newScriptedClient(t, nil, func(r *bufio.Reader, w io.Writer) {
		writeLine(t, w, "* OK [CAPABILITY IMAP4rev1] ready")
		// Nothing should be written on the wire for an unrecognized subcommand.
	})
	defer c.Disconnect()

	if err := c.WaitState(imap.ConnStateNotAuthenticated, time.Second); err != nil {
		t.Fatalf("WaitState: %v", err)
	}
	_, err := c.UID("BOGUS", "1:*")
	if err == nil {
		t.Fatal("expected an unknown UID subcommand to be rejected locally")
	}
	if _, ok := err.(*imap.ProtocolError); !ok {
		t.Errorf("err = %T, want *imap.ProtocolError", err)
	}
}

func TestUIDExpungeWithoutUIDPlusIsRejectedLocally(t *testing.T) {
	c := newScriptedClient(t, nil, func(r *bufio.Reader, w io.Writer) {
		writeLine(t, w, "* OK [CAPABILITY IMAP4rev1] ready")
		// No UIDPLUS advertised; the client must reject UIDExpunge before
		// writing anything, so nothing further is read here.
	})
	defer c.Disconnect()

	if err := c.WaitState(imap.ConnStateNotAuthenticated, time.Second); err != nil {
		t.Fatalf("WaitState: %v", err)
	}
	_, err := c.UIDExpunge(imap.UIDSetNum(1, 2, 3))
	if err == nil {
		t.Fatal("expected UIDExpunge to fail without UIDPLUS")
	}
	if _, ok := err.(*imap.ProtocolError); !ok {
		t.Errorf("err = %T, want *imap.ProtocolError", err)
	}
}

func TestIdlePushesUntaggedDataThenDone(t *testing.T) {
	opts := &imapclient.Options{}
	c := newScriptedClient(t, opts, func(r *bufio.Reader, w io.Writer) {
		writeLine(t, w, "* OK [CAPABILITY IMAP4rev1 IDLE] ready")
		line := readLine(t, r)
		if !strings.Contains(line, "LOGIN") {
			t.Errorf("expected LOGIN, got %q", line)
		}
		tag := strings.Fields(line)[0]
		writeLine(t, w, tag+" OK LOGIN completed")

		line = readLine(t, r)
		if !strings.Contains(line, "SELECT") {
			t.Errorf("expected SELECT, got %q", line)
		}
		tag = strings.Fields(line)[0]
		writeLine(t, w, "* 2 EXISTS")
		writeLine(t, w, tag+" OK [READ-WRITE] SELECT completed")

		line = readLine(t, r)
		if !strings.Contains(line, "IDLE") {
			t.Errorf("expected IDLE, got %q", line)
		}
		idleTag := strings.Fields(line)[0]
		writeLine(t, w, "+ idling")
		writeLine(t, w, "* 3 EXISTS")

		done := readLine(t, r)
		if done != "DONE" {
			t.Errorf("expected DONE, got %q", done)
		}
		writeLine(t, w, idleTag+" OK IDLE terminated")
	})
	defer c.Disconnect()

	if err := c.WaitState(imap.ConnStateNotAuthenticated, time.Second); err != nil {
		t.Fatalf("WaitState: %v", err)
	}
	if _, err := c.Login("alice", "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := c.Select("INBOX"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	ic, err := c.IdleStart(0)
	if err != nil {
		t.Fatalf("IdleStart: %v", err)
	}
	batch, err := ic.WaitServerPush(time.Second)
	if err != nil {
		t.Fatalf("WaitServerPush: %v", err)
	}
	if len(batch) != 1 || !strings.Contains(string(batch[0]), "EXISTS") {
		t.Errorf("batch = %+v, want a single EXISTS notification", batch)
	}
	if err := ic.Done(); err != nil {
		t.Fatalf("Done: %v", err)
	}
}
