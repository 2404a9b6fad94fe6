package atelier

import (
	"context"
	"encoding/json"
	"runtime"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Bridge channels exposed to page scripts.
const (
	ChannelSelectDirectory = "select-directory"
	ChannelExportData      = "export-data"
	ChannelMinimizeWindow  = "minimize-window"
	ChannelMaximizeWindow  = "maximize-window"
	ChannelCloseWindow     = "close-window"
	ChannelGetAppVersion   = "get-app-version"
	ChannelGetPlatform     = "get-platform"
)

var (
	// ErrChannelNotAllowed is returned for any channel outside the allow-list.
	ErrChannelNotAllowed = errors.New("bridge channel not allowed")

	// ErrNoWindow is returned by dialogs when no main window is open.
	ErrNoWindow = errors.New("no window open")
)

// invokeChannels answer with a value; sendChannels are fire-and-forget.
var (
	invokeChannels = map[string]bool{
		ChannelSelectDirectory: true,
		ChannelExportData:      true,
		ChannelGetAppVersion:   true,
		ChannelGetPlatform:     true,
	}
	sendChannels = map[string]bool{
		ChannelMinimizeWindow: true,
		ChannelMaximizeWindow: true,
		ChannelCloseWindow:    true,
	}
)

type windowSource interface {
	Window() Window
}

// Bridge is the only privileged surface page scripts can reach. Every
// operation targets the main window.
type Bridge struct {
	windows windowSource
	version string
	logger  zerolog.Logger
}

func newBridge(windows windowSource, version string, logger zerolog.Logger) *Bridge {
	return &Bridge{windows: windows, version: version, logger: logger}
}

// Allowed reports whether channel is on the allow-list.
func Allowed(channel string) bool {
	return invokeChannels[channel] || sendChannels[channel]
}

// Invoke dispatches a request/response channel. A nil result with a nil
// error means the user cancelled a dialog.
func (b *Bridge) Invoke(ctx context.Context, channel string, payload any) (any, error) {
	if !invokeChannels[channel] {
		return nil, errors.Wrapf(ErrChannelNotAllowed, "invoke %q", channel)
	}

	switch channel {
	case ChannelSelectDirectory:
		return optional(b.SelectDirectory(ctx))
	case ChannelExportData:
		data, err := payloadBytes(payload)
		if err != nil {
			return nil, err
		}
		return optional(b.ExportData(ctx, data))
	case ChannelGetAppVersion:
		return b.AppVersion(), nil
	default:
		return b.Platform(), nil
	}
}

// Send dispatches a fire-and-forget channel.
func (b *Bridge) Send(channel string) error {
	if !sendChannels[channel] {
		return errors.Wrapf(ErrChannelNotAllowed, "send %q", channel)
	}

	switch channel {
	case ChannelMinimizeWindow:
		b.Minimize()
	case ChannelMaximizeWindow:
		b.Maximize()
	default:
		b.Close()
	}
	return nil
}

// SelectDirectory shows a directory picker on the main window. ok is false
// when the user cancelled.
func (b *Bridge) SelectDirectory(ctx context.Context) (path string, ok bool, err error) {
	w := b.windows.Window()
	if w == nil {
		return "", false, ErrNoWindow
	}
	path, err = w.SelectDirectory(ctx, DirectoryDialog{Title: "Select Directory"})
	if err != nil {
		return "", false, errors.Wrap(err, "select directory")
	}
	return path, path != "", nil
}

// ExportData asks where to save an export, offering only CSV and JSON. When
// a path is chosen and payload is not empty, payload is written there in the
// format the extension names. ok is false when the user cancelled.
func (b *Bridge) ExportData(ctx context.Context, payload []byte) (path string, ok bool, err error) {
	w := b.windows.Window()
	if w == nil {
		return "", false, ErrNoWindow
	}
	path, err = w.SaveFile(ctx, SaveDialog{
		Title:           "Export Data",
		DefaultFilename: "export.csv",
		Filters:         ExportFilters(),
	})
	if err != nil {
		return "", false, errors.Wrap(err, "export dialog")
	}
	if path == "" {
		return "", false, nil
	}

	if err := WriteExport(path, payload); err != nil {
		return "", false, err
	}
	b.logger.Info().Str("path", path).Int("bytes", len(payload)).Msg("data exported")
	return path, true, nil
}

// Minimize minimizes the main window. No-op without one.
func (b *Bridge) Minimize() {
	if w := b.windows.Window(); w != nil {
		w.Minimize()
	}
}

// Maximize toggles the main window between maximized and restored.
func (b *Bridge) Maximize() {
	if w := b.windows.Window(); w != nil {
		w.ToggleMaximize()
	}
}

// Close closes the main window. The shell reports the close back as an
// [EventWindowClosed].
func (b *Bridge) Close() {
	if w := b.windows.Window(); w != nil {
		w.Close()
	}
}

// AppVersion is the build version.
func (b *Bridge) AppVersion() string {
	return b.version
}

// Platform is the operating system in the names page scripts expect:
// runtime.GOOS except "win32" for windows and "sunos" for solaris and
// illumos.
func (b *Bridge) Platform() string {
	return platformName(runtime.GOOS)
}

func platformName(goos string) string {
	switch goos {
	case "windows":
		return "win32"
	case "solaris", "illumos":
		return "sunos"
	default:
		return goos
	}
}

func optional(path string, ok bool, err error) (any, error) {
	if err != nil || !ok {
		return nil, err
	}
	return path, nil
}

func payloadBytes(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case []byte:
		return p, nil
	case json.RawMessage:
		return p, nil
	case string:
		return []byte(p), nil
	default:
		data, err := json.Marshal(p)
		if err != nil {
			return nil, errors.Wrap(err, "encode export payload")
		}
		return data, nil
	}
}
