package fetch

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func encodePNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func kindOf(t *testing.T, err error) ErrorKind {
	t.Helper()
	var ferr *Error
	if !errors.As(err, &ferr) {
		t.Fatalf("error %v is not a *fetch.Error", err)
	}
	return ferr.Kind
}

func TestFetchURL(t *testing.T) {
	data := encodePNG(t, color.RGBA{R: 255, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	f := New(time.Second)
	img, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if b := img.Bounds(); b.Dx() != 10 || b.Dy() != 10 {
		t.Errorf("bounds = %v, want 10x10", b)
	}
	r, g, bl, _ := img.At(5, 5).RGBA()
	if r>>8 != 255 || g>>8 != 0 || bl>>8 != 0 {
		t.Errorf("pixel = (%d, %d, %d), want (255, 0, 0)", r>>8, g>>8, bl>>8)
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := New(time.Second)
	_, err := f.Fetch(context.Background(), srv.URL)
	if kind := kindOf(t, err); kind != KindTransport {
		t.Errorf("kind = %v, want transport", kind)
	}
}

func TestFetchUndecodableBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not an image"))
	}))
	defer srv.Close()

	f := New(time.Second)
	_, err := f.Fetch(context.Background(), srv.URL)
	if kind := kindOf(t, err); kind != KindDecode {
		t.Errorf("kind = %v, want decode", kind)
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	f := New(30 * time.Millisecond)
	start := time.Now()
	_, err := f.Fetch(context.Background(), srv.URL)
	if kind := kindOf(t, err); kind != KindTimeout {
		t.Errorf("kind = %v, want timeout", kind)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("fetch did not abort promptly: %v", elapsed)
	}
}

func TestFetchLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item.png")
	if err := os.WriteFile(path, encodePNG(t, color.RGBA{B: 255, A: 255}), 0o600); err != nil {
		t.Fatal(err)
	}

	f := New(time.Second)
	img, err := f.Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 10 {
		t.Errorf("bounds = %v, want 10x10", b)
	}
}

func TestFetchMissingFile(t *testing.T) {
	f := New(time.Second)
	_, err := f.Fetch(context.Background(), filepath.Join(t.TempDir(), "absent.png"))
	if kind := kindOf(t, err); kind != KindTransport {
		t.Errorf("kind = %v, want transport", kind)
	}
}
