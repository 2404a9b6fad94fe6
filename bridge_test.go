package atelier

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBridge(w Window) *Bridge {
	return newBridge(staticWindows{w: w}, "1.2.3", zerolog.Nop())
}

func TestBridge_RejectsUnknownChannels(t *testing.T) {
	b := newTestBridge(&fakeWindow{id: "w1"})
	ctx := context.Background()

	for _, ch := range []string{"open-file", "shell-exec", "", "Select-Directory"} {
		_, err := b.Invoke(ctx, ch, nil)
		assert.ErrorIs(t, err, ErrChannelNotAllowed, ch)
		assert.ErrorIs(t, b.Send(ch), ErrChannelNotAllowed, ch)
		assert.False(t, Allowed(ch))
	}

	// invoke and send channels are not interchangeable
	_, err := b.Invoke(ctx, ChannelMinimizeWindow, nil)
	assert.ErrorIs(t, err, ErrChannelNotAllowed)
	assert.ErrorIs(t, b.Send(ChannelGetPlatform), ErrChannelNotAllowed)
}

func TestBridge_AllowList(t *testing.T) {
	for _, ch := range []string{
		ChannelSelectDirectory, ChannelExportData, ChannelMinimizeWindow,
		ChannelMaximizeWindow, ChannelCloseWindow, ChannelGetAppVersion, ChannelGetPlatform,
	} {
		assert.True(t, Allowed(ch), ch)
	}
}

func TestBridge_SelectDirectory(t *testing.T) {
	w := &fakeWindow{id: "w1", dirPath: "/home/ada/exports"}
	b := newTestBridge(w)

	path, ok, err := b.SelectDirectory(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/home/ada/exports", path)

	got, err := b.Invoke(context.Background(), ChannelSelectDirectory, nil)
	require.NoError(t, err)
	assert.Equal(t, "/home/ada/exports", got)
}

func TestBridge_SelectDirectoryCancelled(t *testing.T) {
	b := newTestBridge(&fakeWindow{id: "w1"})

	path, ok, err := b.SelectDirectory(context.Background())
	require.NoError(t, err, "cancel is not an error")
	assert.False(t, ok)
	assert.Empty(t, path)

	got, err := b.Invoke(context.Background(), ChannelSelectDirectory, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBridge_DialogErrors(t *testing.T) {
	b := newTestBridge(&fakeWindow{id: "w1", dialogErr: errors.New("portal unavailable")})

	_, _, err := b.SelectDirectory(context.Background())
	assert.Error(t, err)

	_, _, err = b.ExportData(context.Background(), []byte(`[]`))
	assert.Error(t, err)
}

func TestBridge_NoWindow(t *testing.T) {
	b := newTestBridge(nil)

	_, _, err := b.SelectDirectory(context.Background())
	assert.ErrorIs(t, err, ErrNoWindow)

	_, _, err = b.ExportData(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoWindow)

	// fire-and-forget controls are no-ops
	b.Minimize()
	b.Maximize()
	b.Close()
	assert.NoError(t, b.Send(ChannelCloseWindow))
}

func TestBridge_ExportOffersCSVAndJSONOnly(t *testing.T) {
	w := &fakeWindow{id: "w1"}
	b := newTestBridge(w)

	path, ok, err := b.ExportData(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, path)

	filters := w.saveOpts.Filters
	require.Len(t, filters, 2)
	assert.Equal(t, []string{"csv"}, filters[0].Extensions)
	assert.Equal(t, []string{"json"}, filters[1].Extensions)
}

func TestBridge_ExportWritesChosenPath(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "orders.json")
	w := &fakeWindow{id: "w1", savePath: dest}
	b := newTestBridge(w)

	got, err := b.Invoke(context.Background(), ChannelExportData, `[{"id":"o1","price":120}]`)
	require.NoError(t, err)
	assert.Equal(t, dest, got)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"o1","price":120}]`, string(data))
}

func TestBridge_ExportMarshalsStructuredPayloads(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "clients.csv")
	b := newTestBridge(&fakeWindow{id: "w1", savePath: dest})

	payload := []map[string]any{{"name": "Ada"}, {"name": "Grace"}}
	_, err := b.Invoke(context.Background(), ChannelExportData, payload)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "name\nAda\nGrace\n", string(data))
}

func TestBridge_ExportChosenPathWithoutPayload(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "empty.csv")
	b := newTestBridge(&fakeWindow{id: "w1", savePath: dest})

	path, ok, err := b.ExportData(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, dest, path)

	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err), "nothing to write")
}

func TestBridge_WindowControls(t *testing.T) {
	w := &fakeWindow{id: "w1"}
	b := newTestBridge(w)

	require.NoError(t, b.Send(ChannelMinimizeWindow))
	require.NoError(t, b.Send(ChannelMaximizeWindow))
	require.NoError(t, b.Send(ChannelMaximizeWindow))
	require.NoError(t, b.Send(ChannelCloseWindow))

	assert.Equal(t, 1, w.minimized)
	assert.Equal(t, 2, w.toggled)
	assert.True(t, w.closed)
}

func TestBridge_AppInfo(t *testing.T) {
	b := newTestBridge(nil)

	v, err := b.Invoke(context.Background(), ChannelGetAppVersion, nil)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)

	p, err := b.Invoke(context.Background(), ChannelGetPlatform, nil)
	require.NoError(t, err)
	assert.Equal(t, platformName(runtime.GOOS), p)
}

func TestBridge_FollowsCoordinatorWindow(t *testing.T) {
	c, _, sh := newTestCoordinator(t, WithVersion("2.0.0"), WithPolicy(KeepAlive))

	assert.ErrorIs(t, func() error { _, _, err := c.Bridge().SelectDirectory(context.Background()); return err }(), ErrNoWindow)

	_, err := c.handle(context.Background(), Event{Type: EventReady})
	require.NoError(t, err)

	c.Bridge().Minimize()
	assert.Equal(t, 1, sh.windows[0].minimized)
	assert.Equal(t, "2.0.0", c.Bridge().AppVersion())
}

func TestPlatformName(t *testing.T) {
	tests := map[string]string{
		"windows": "win32",
		"darwin":  "darwin",
		"linux":   "linux",
		"freebsd": "freebsd",
		"illumos": "sunos",
		"solaris": "sunos",
	}
	for goos, want := range tests {
		assert.Equal(t, want, platformName(goos), goos)
	}
}
