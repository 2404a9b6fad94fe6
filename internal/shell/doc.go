// Package shell adapts native windowing platforms to [atelier.Shell].
//
// [Wails] runs the desktop app in a system webview. The webview never loads
// the API origin directly: the wails asset server reverse-proxies to the
// embedded API so the page keeps the wails origin and with it the JS binding
// ([Binding]) to the bridge.
//
// [Headless] has no UI at all. Windows are bookkeeping only and dialogs
// always report a cancel. It backs the serve command and tests.
package shell

import "github.com/jpalmerr/atelier"

// Poster delivers platform events to a coordinator. (*atelier.Coordinator).Post
// satisfies it.
type Poster func(atelier.Event) error
