package matte

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// MaskRequest carries one frame over the wire. PNG keeps the payload
// lossless; the host has already downscaled large images.
type MaskRequest struct {
	PNG []byte
}

// RemoverPlugin implements the go-plugin Plugin interface for Remover.
type RemoverPlugin struct {
	plugin.Plugin
	Impl Remover
}

// Server returns an RPC server for this plugin.
func (p *RemoverPlugin) Server(*plugin.MuxBroker) (any, error) {
	return &removerRPCServer{impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *RemoverPlugin) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &RemoverRPCClient{client: c}, nil
}

// removerRPCServer is the plugin-side RPC implementation.
type removerRPCServer struct {
	impl Remover
}

// Mask implements the RPC method for mask computation.
func (s *removerRPCServer) Mask(req MaskRequest, resp *Mask) error {
	img, err := png.Decode(bytes.NewReader(req.PNG))
	if err != nil {
		return fmt.Errorf("decode request image: %w", err)
	}

	mask, err := s.impl.Mask(context.Background(), img)
	if err != nil {
		return err
	}

	*resp = *mask
	return nil
}

// RemoverRPCClient is the host side of the matte protocol.
type RemoverRPCClient struct {
	client *rpc.Client
}

// Mask calls the remote Mask method.
func (c *RemoverRPCClient) Mask(_ context.Context, img image.Image) (*Mask, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode request image: %w", err)
	}

	var mask Mask
	if err := c.client.Call("Plugin.Mask", MaskRequest{PNG: buf.Bytes()}, &mask); err != nil {
		return nil, err
	}

	if len(mask.Alpha) != mask.Width*mask.Height {
		return nil, fmt.Errorf("plugin returned malformed mask: %dx%d with %d alpha bytes",
			mask.Width, mask.Height, len(mask.Alpha))
	}

	return &mask, nil
}
