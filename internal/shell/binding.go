package shell

import (
	"context"
	"sync"

	"github.com/jpalmerr/atelier"
)

// Binding is the object page scripts reach as window.go.shell.Binding.
// Every call goes through the bridge's channel allow-list.
//
// Dialog results are empty strings when the user cancels.
type Binding struct {
	mu     sync.RWMutex
	ctx    context.Context
	bridge *atelier.Bridge

	onActivate func()
}

func (b *Binding) attach(ctx context.Context, bridge *atelier.Bridge) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ctx = ctx
	b.bridge = bridge
}

func (b *Binding) current() (context.Context, *atelier.Bridge) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ctx := b.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, b.bridge
}

func (b *Binding) invoke(channel string, payload any) (string, error) {
	ctx, bridge := b.current()
	if bridge == nil {
		return "", atelier.ErrNoWindow
	}
	v, err := bridge.Invoke(ctx, channel, payload)
	if err != nil || v == nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

func (b *Binding) send(channel string) {
	if _, bridge := b.current(); bridge != nil {
		_ = bridge.Send(channel)
	}
}

// SelectDirectory opens a directory picker.
func (b *Binding) SelectDirectory() (string, error) {
	return b.invoke(atelier.ChannelSelectDirectory, nil)
}

// ExportData asks for a CSV or JSON destination and writes data (a JSON
// document) there.
func (b *Binding) ExportData(data string) (string, error) {
	return b.invoke(atelier.ChannelExportData, data)
}

// Minimize minimizes the window.
func (b *Binding) Minimize() { b.send(atelier.ChannelMinimizeWindow) }

// Maximize toggles maximized.
func (b *Binding) Maximize() { b.send(atelier.ChannelMaximizeWindow) }

// Close closes the window.
func (b *Binding) Close() { b.send(atelier.ChannelCloseWindow) }

// Activate tells the shell the page is visible again. The page calls it on
// focus and visibility changes; it is a no-op while the window is open.
func (b *Binding) Activate() {
	if b.onActivate != nil {
		b.onActivate()
	}
}

// GetAppVersion returns the build version.
func (b *Binding) GetAppVersion() (string, error) {
	return b.invoke(atelier.ChannelGetAppVersion, nil)
}

// GetPlatform returns the operating system.
func (b *Binding) GetPlatform() (string, error) {
	return b.invoke(atelier.ChannelGetPlatform, nil)
}
