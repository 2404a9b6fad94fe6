package atelier

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoordinator(t *testing.T, opts ...Option) (*Coordinator, *fakeServer, *fakeShell) {
	t.Helper()
	srv := &fakeServer{}
	sh := &fakeShell{}
	c, err := New(append([]Option{WithServer(srv), WithShell(sh)}, opts...)...)
	require.NoError(t, err)
	return c, srv, sh
}

func runAsync(t *testing.T, c *Coordinator, ctx context.Context) <-chan error {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()
	return errc
}

func waitRun(t *testing.T, errc <-chan error) error {
	t.Helper()
	select {
	case err := <-errc:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestNew_RequiresServerAndShell(t *testing.T) {
	_, err := New(WithShell(&fakeShell{}))
	assert.Error(t, err)

	_, err = New(WithServer(&fakeServer{}))
	assert.Error(t, err)

	_, err = New(WithServer(nil))
	assert.Error(t, err)
}

func TestReady_StartsServerThenLoadsWindow(t *testing.T) {
	c, srv, sh := newTestCoordinator(t)
	assert.Equal(t, StateNotStarted, c.State())

	finished, err := c.handle(context.Background(), Event{Type: EventReady})
	require.NoError(t, err)
	assert.False(t, finished)

	starts, _ := srv.counts()
	assert.Equal(t, 1, starts)
	require.Equal(t, 1, sh.opened())

	w := sh.windows[0]
	assert.Equal(t, "http://127.0.0.1:3001", w.loaded)
	assert.Zero(t, w.devTools)

	opts := sh.opts[0]
	assert.Equal(t, "Jewelry Order Management", opts.Title)
	assert.Equal(t, 1400, opts.Width)
	assert.Equal(t, 900, opts.Height)
	assert.True(t, opts.Isolated)
	assert.Same(t, c.Bridge(), opts.Bridge)

	assert.Equal(t, StateRunning, c.State())
	assert.Equal(t, w, c.Window())
}

func TestReady_RepeatedIsIgnored(t *testing.T) {
	c, srv, sh := newTestCoordinator(t)
	ctx := context.Background()

	_, err := c.handle(ctx, Event{Type: EventReady})
	require.NoError(t, err)
	_, err = c.handle(ctx, Event{Type: EventReady})
	require.NoError(t, err)

	starts, _ := srv.counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, sh.opened())
}

func TestReady_ServerFailureIsFatal(t *testing.T) {
	c, srv, sh := newTestCoordinator(t)
	srv.startErr = errors.New("address already in use")

	errc := runAsync(t, c, context.Background())
	require.NoError(t, c.Post(Event{Type: EventReady}))

	err := waitRun(t, errc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address already in use")
	assert.Equal(t, StateStopped, c.State())
	assert.Zero(t, sh.opened(), "no window without a server")
	assert.Equal(t, 1, sh.quitCount())
}

func TestReady_WindowFailureStopsServer(t *testing.T) {
	c, srv, sh := newTestCoordinator(t)
	sh.loadErr = errors.New("blank page")

	_, err := c.handle(context.Background(), Event{Type: EventReady})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load window")

	_, stops := srv.counts()
	assert.Equal(t, 1, stops)
	assert.True(t, sh.windows[0].closed)
	assert.Equal(t, StateStopped, c.State())
	assert.Nil(t, c.Window())
}

func TestWindowClosed_QuitsUnderQuitPolicy(t *testing.T) {
	c, srv, sh := newTestCoordinator(t, WithPolicy(QuitOnLastWindowClosed))
	ctx := context.Background()

	_, err := c.handle(ctx, Event{Type: EventReady})
	require.NoError(t, err)

	finished, err := c.handle(ctx, Event{Type: EventWindowClosed, WindowID: sh.windows[0].ID()})
	require.NoError(t, err)
	assert.True(t, finished)

	_, stops := srv.counts()
	assert.Equal(t, 1, stops)
	assert.Equal(t, 1, sh.quitCount())
	assert.Equal(t, StateStopped, c.State())
}

func TestWindowClosed_KeepAliveThenActivate(t *testing.T) {
	c, srv, sh := newTestCoordinator(t, WithPolicy(KeepAlive))
	ctx := context.Background()

	_, err := c.handle(ctx, Event{Type: EventReady})
	require.NoError(t, err)

	finished, err := c.handle(ctx, Event{Type: EventWindowClosed})
	require.NoError(t, err)
	assert.False(t, finished)
	assert.Equal(t, StateRunning, c.State())
	assert.Nil(t, c.Window())

	_, stops := srv.counts()
	assert.Zero(t, stops, "server keeps running with zero windows")

	_, err = c.handle(ctx, Event{Type: EventActivate})
	require.NoError(t, err)
	assert.Equal(t, 2, sh.opened(), "activate opens exactly one new window")
	assert.Equal(t, "http://127.0.0.1:3001", sh.windows[1].loaded)

	_, err = c.handle(ctx, Event{Type: EventActivate})
	require.NoError(t, err)
	assert.Equal(t, 2, sh.opened(), "activate with a window open does nothing")
}

func TestWindowClosed_UnknownWindowIsIgnored(t *testing.T) {
	c, _, _ := newTestCoordinator(t, WithPolicy(QuitOnLastWindowClosed))
	ctx := context.Background()

	_, err := c.handle(ctx, Event{Type: EventReady})
	require.NoError(t, err)

	finished, err := c.handle(ctx, Event{Type: EventWindowClosed, WindowID: "other"})
	require.NoError(t, err)
	assert.False(t, finished)
	assert.NotNil(t, c.Window())
}

func TestActivate_BeforeReadyDoesNothing(t *testing.T) {
	c, _, sh := newTestCoordinator(t)

	_, err := c.handle(context.Background(), Event{Type: EventActivate})
	require.NoError(t, err)
	assert.Zero(t, sh.opened())
}

func TestBeforeQuit_StopsServerExactlyOnce(t *testing.T) {
	c, srv, sh := newTestCoordinator(t, WithPolicy(KeepAlive))

	errc := runAsync(t, c, context.Background())
	require.NoError(t, c.Post(Event{Type: EventReady}))
	require.NoError(t, c.Post(Event{Type: EventBeforeQuit}))
	require.NoError(t, waitRun(t, errc))

	// a second quit path must not stop the server again
	c.quit(context.Background())

	_, stops := srv.counts()
	assert.Equal(t, 1, stops)
	assert.GreaterOrEqual(t, sh.quitCount(), 1)
	assert.Equal(t, StateStopped, c.State())
	assert.Nil(t, c.Window())
}

func TestRun_ContextCancelQuits(t *testing.T) {
	c, srv, _ := newTestCoordinator(t)
	ctx, cancel := context.WithCancel(context.Background())

	errc := runAsync(t, c, ctx)
	require.NoError(t, c.Post(Event{Type: EventReady}))
	require.Eventually(t, func() bool { return c.State() == StateRunning }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, waitRun(t, errc))

	_, stops := srv.counts()
	assert.Equal(t, 1, stops)
	assert.Equal(t, StateStopped, c.State())
}

func TestRun_OnlyOnce(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	errc := runAsync(t, c, context.Background())
	require.NoError(t, c.Post(Event{Type: EventBeforeQuit}))
	require.NoError(t, waitRun(t, errc))

	assert.Error(t, c.Run(context.Background()))
}

func TestPost_AfterRunReturnsErrStopped(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	errc := runAsync(t, c, context.Background())
	require.NoError(t, c.Post(Event{Type: EventBeforeQuit}))
	require.NoError(t, waitRun(t, errc))

	<-c.Done()
	assert.ErrorIs(t, c.Post(Event{Type: EventActivate}), ErrStopped)
}

func TestDevTools_OpenedOnEveryWindow(t *testing.T) {
	c, _, sh := newTestCoordinator(t, WithDevTools(true), WithPolicy(KeepAlive))
	ctx := context.Background()

	_, err := c.handle(ctx, Event{Type: EventReady})
	require.NoError(t, err)
	_, err = c.handle(ctx, Event{Type: EventWindowClosed})
	require.NoError(t, err)
	_, err = c.handle(ctx, Event{Type: EventActivate})
	require.NoError(t, err)

	require.Equal(t, 2, sh.opened())
	assert.Equal(t, 1, sh.windows[0].devTools)
	assert.Equal(t, 1, sh.windows[1].devTools)
}

func TestCoordinators_AreIndependent(t *testing.T) {
	a, srvA, _ := newTestCoordinator(t)
	b, srvB, _ := newTestCoordinator(t)
	ctx := context.Background()

	_, err := a.handle(ctx, Event{Type: EventReady})
	require.NoError(t, err)
	_, err = a.handle(ctx, Event{Type: EventBeforeQuit})
	require.NoError(t, err)

	assert.Equal(t, StateStopped, a.State())
	assert.Equal(t, StateNotStarted, b.State())
	_, stopsA := srvA.counts()
	startsB, _ := srvB.counts()
	assert.Equal(t, 1, stopsA)
	assert.Zero(t, startsB)
}

func TestPolicy_Defaults(t *testing.T) {
	assert.Equal(t, KeepAlive, policyFor("darwin"))
	assert.Equal(t, QuitOnLastWindowClosed, policyFor("linux"))
	assert.Equal(t, QuitOnLastWindowClosed, policyFor("windows"))
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
		ok   bool
	}{
		{"", DefaultPolicy(), true},
		{"auto", DefaultPolicy(), true},
		{"quit", QuitOnLastWindowClosed, true},
		{"keep_alive", KeepAlive, true},
		{"keep-alive", KeepAlive, true},
		{"sometimes", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePolicy(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "window_closed", EventWindowClosed.String())
	assert.Equal(t, "keep_alive", KeepAlive.String())
}
