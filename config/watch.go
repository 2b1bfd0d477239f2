package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// GatewayList holds the live IPFS gateway order. When a gateway list file is
// configured it is reloaded on every write to that file, so gateways can be
// reordered or replaced without restarting the server.
type GatewayList struct {
	mu       sync.RWMutex
	gateways []string
	watcher  *fsnotify.Watcher
	onChange func([]string)
}

// NewGatewayList creates a gateway list seeded from the static configuration.
func NewGatewayList(cfg *Config) *GatewayList {
	g := &GatewayList{gateways: append([]string(nil), cfg.IPFSGateways...)}
	if cfg.GatewayListFile != "" {
		if gws, err := readGatewayFile(cfg.GatewayListFile); err == nil && len(gws) > 0 {
			g.gateways = gws
		}
	}
	return g
}

// Gateways returns a copy of the current gateway order.
func (g *GatewayList) Gateways() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]string(nil), g.gateways...)
}

// OnChange registers a callback invoked after every reload.
func (g *GatewayList) OnChange(fn func([]string)) {
	g.mu.Lock()
	g.onChange = fn
	g.mu.Unlock()
}

// Watch reloads the gateway list whenever the given file changes.
// It returns immediately; reloads happen on a background goroutine.
func (g *GatewayList) Watch(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create gateway list watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch gateway list file %s: %w", path, err)
	}
	g.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					g.reload(path)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}

// Close stops watching the gateway list file.
func (g *GatewayList) Close() error {
	if g.watcher != nil {
		return g.watcher.Close()
	}
	return nil
}

func (g *GatewayList) reload(path string) {
	gws, err := readGatewayFile(path)
	if err != nil || len(gws) == 0 {
		return // keep the previous order on a bad reload
	}
	g.mu.Lock()
	g.gateways = gws
	fn := g.onChange
	g.mu.Unlock()
	if fn != nil {
		fn(gws)
	}
}

func readGatewayFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return splitGateways(string(data)), nil
}
