// Package panel serves the timer control panel as an embedded asset.
//
// The panel is a single static page embedded into the Go binary with the
// go:embed directive, so the service has no runtime dependency on external
// files. It drives the timer through the same HTTP endpoints as any other
// client and follows live changes over the WebSocket channel.
//
// Unknown paths fall back to index.html so bookmarked sub-paths still load
// the panel.
package panel
