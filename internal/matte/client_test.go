package matte

import (
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
)

func TestDiscoverMissingBinary(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "no-such-plugin"), hclog.NewNullLogger()); err == nil {
		t.Fatal("Discover accepted a missing plugin binary")
	}
}

func TestDiscoverEmptyPathSearchesPATH(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if _, err := Discover("", hclog.NewNullLogger()); err == nil {
		t.Fatal("Discover found a plugin on an empty PATH")
	}
}
