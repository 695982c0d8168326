// Package matte defines the public protocol for background-removal
// plugins. External matte plugins should import this package (not
// internal packages) and call Serve from their main.
package matte

import (
	"context"
	"image"

	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion defines the current matte plugin API version.
	ProtocolVersion = 1

	// PluginName is the dispense key for the matte capability.
	PluginName = "matte"
)

// Handshake is the handshake configuration for the go-plugin protocol.
// It ensures matte plugins can only connect to compatible hosts.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  ProtocolVersion,
	MagicCookieKey:   "HUESORT_PLUGIN",
	MagicCookieValue: "huesort_matte",
}

// Mask is a per-pixel opacity estimate separating subject from
// background, row-major, one byte per pixel (0 = background,
// 255 = fully foreground).
type Mask struct {
	Width  int
	Height int
	Alpha  []uint8
}

// At returns the opacity at (x, y).
func (m *Mask) At(x, y int) uint8 {
	return m.Alpha[y*m.Width+x]
}

// Remover computes a foreground mask for an image. Implementations run
// in a separate plugin process; the host talks to them over RPC.
type Remover interface {
	Mask(ctx context.Context, img image.Image) (*Mask, error)
}

// Serve runs a Remover as a plugin process. It blocks and is intended
// to be the entire body of a plugin's main function.
func Serve(impl Remover) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			PluginName: &RemoverPlugin{Impl: impl},
		},
	})
}
