// Package matte hosts the optional background-removal plugin process.
// The capability check happens exactly once, at construction time;
// callers that get an error fall back to brightness filtering.
package matte

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	mattesdk "github.com/huesort/huesort/pkg/matte"
)

// DefaultPluginName is the binary searched on PATH when no explicit
// plugin path is configured.
const DefaultPluginName = "huesort-matte"

// Client owns the plugin process and its RPC connection. It implements
// mattesdk.Remover and must be closed to reap the child process.
type Client struct {
	client  *plugin.Client
	remover mattesdk.Remover
	path    string
}

// Discover locates a matte plugin binary, starts it and completes the
// handshake. A non-nil error means the capability is unavailable.
func Discover(path string, logger hclog.Logger) (*Client, error) {
	if path == "" {
		found, err := exec.LookPath(DefaultPluginName)
		if err != nil {
			return nil, fmt.Errorf("no matte plugin on PATH (looked for %q): %w", DefaultPluginName, err)
		}
		path = found
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("matte plugin not found at %s: %w", path, err)
	}

	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: mattesdk.Handshake,
		Plugins: map[string]plugin.Plugin{
			mattesdk.PluginName: &mattesdk.RemoverPlugin{},
		},
		Cmd:              exec.Command(path), // #nosec G204 - operator-configured plugin binary
		Logger:           logger.Named("matte"),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("matte plugin handshake failed: %w", err)
	}

	raw, err := rpcClient.Dispense(mattesdk.PluginName)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("matte plugin dispense failed: %w", err)
	}

	remover, ok := raw.(mattesdk.Remover)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("matte plugin %s does not implement the remover protocol", path)
	}

	logger.Debug("matte plugin ready", "path", path)

	return &Client{client: client, remover: remover, path: path}, nil
}

// Mask delegates to the plugin process.
func (c *Client) Mask(ctx context.Context, img image.Image) (*mattesdk.Mask, error) {
	return c.remover.Mask(ctx, img)
}

// Path returns the plugin binary path.
func (c *Client) Path() string {
	return c.path
}

// Close kills the plugin process.
func (c *Client) Close() {
	if c.client != nil {
		c.client.Kill()
		c.client = nil
		c.remover = nil
	}
}
