package atelier

import "context"

// Main window defaults.
const (
	DefaultTitle  = "Jewelry Order Management"
	DefaultWidth  = 1400
	DefaultHeight = 900
)

// APIServer is the embedded API the window renders. *server.Server
// implements it.
type APIServer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	URL() string
}

// Shell is the native windowing platform.
type Shell interface {
	// OpenWindow creates a window. It does not load any content.
	OpenWindow(ctx context.Context, opts WindowOptions) (Window, error)

	// Quit asks the platform to exit. Must be safe to call more than once.
	Quit()
}

// Window is one native window. Methods other than Load and the dialogs are
// fire-and-forget.
type Window interface {
	ID() string
	Load(url string) error
	OpenDevTools()
	Minimize()
	ToggleMaximize()
	Close()

	// SelectDirectory shows a directory picker. An empty path means the
	// user cancelled.
	SelectDirectory(ctx context.Context, opts DirectoryDialog) (string, error)

	// SaveFile shows a save dialog. An empty path means the user cancelled.
	SaveFile(ctx context.Context, opts SaveDialog) (string, error)
}

// WindowOptions describe the main window.
//
// Page scripts never get native access: Isolated keeps the page in its own
// context and Bridge is the only privileged surface exposed to it.
type WindowOptions struct {
	Title    string
	Width    int
	Height   int
	Isolated bool
	Bridge   *Bridge
}

// DefaultWindowOptions returns the fixed main-window options.
func DefaultWindowOptions() WindowOptions {
	return WindowOptions{
		Title:    DefaultTitle,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		Isolated: true,
	}
}

// FileFilter restricts a file dialog to extensions.
type FileFilter struct {
	Name       string
	Extensions []string
}

// DirectoryDialog configures [Window.SelectDirectory].
type DirectoryDialog struct {
	Title string
}

// SaveDialog configures [Window.SaveFile].
type SaveDialog struct {
	Title           string
	DefaultFilename string
	Filters         []FileFilter
}

// ExportFilters are the save-dialog filters offered by export.
func ExportFilters() []FileFilter {
	return []FileFilter{
		{Name: "CSV Files", Extensions: []string{"csv"}},
		{Name: "JSON Files", Extensions: []string{"json"}},
	}
}
