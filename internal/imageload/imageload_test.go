package imageload

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/413232903/markdown2word-mcp/internal/wordml"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, 0, color.NRGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoad_URL(t *testing.T) {
	data := pngBytes(t, 40, 20)
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	l := New(Options{}, nil)
	img, err := l.Load(context.Background(), srv.URL+"/a.png")
	require.NoError(t, err)
	assert.Equal(t, userAgent, gotUA)
	assert.Equal(t, "png", img.Ext)
	assert.Equal(t, data, img.Data)
	assert.Equal(t, int64(40*wordml.EMUPerPixel), img.Width)
	assert.Equal(t, int64(20*wordml.EMUPerPixel), img.Height)
}

func TestLoad_URLNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := New(Options{}, nil).Load(context.Background(), srv.URL+"/missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestLoad_URLTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := New(Options{Timeout: 50 * time.Millisecond}, nil).Load(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestLoad_LocalRelativeToBaseDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pic.png"), pngBytes(t, 10, 10), 0o644))

	l := New(Options{BaseDir: dir}, nil)
	img, err := l.Load(context.Background(), "pic.png")
	require.NoError(t, err)
	assert.Equal(t, "png", img.Ext)
	assert.Equal(t, "pic.png", img.Name)
}

func TestLoad_Downscale(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "wide.png")
	require.NoError(t, os.WriteFile(name, pngBytes(t, 1200, 300), 0o644))

	img, err := New(Options{MaxWidth: 600}, nil).Load(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, "png", img.Ext)
	assert.Equal(t, int64(600*wordml.EMUPerPixel), img.Width)
	assert.Equal(t, int64(150*wordml.EMUPerPixel), img.Height)

	cfg, err := png.DecodeConfig(bytes.NewReader(img.Data))
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Width)
}

func TestLoad_BMPEmbeddedAsIs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 4))))
	dir := t.TempDir()
	name := filepath.Join(dir, "x.dib")
	require.NoError(t, os.WriteFile(name, buf.Bytes(), 0o644))

	img, err := New(Options{}, nil).Load(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, "bmp", img.Ext)
	assert.Equal(t, int64(8*wordml.EMUPerPixel), img.Width)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fake.png"), []byte("not an image"), 0o644))

	l := New(Options{BaseDir: dir}, nil)
	ctx := context.Background()

	_, err := l.Load(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptySource)

	_, err = l.Load(ctx, "notes.txt")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = l.Load(ctx, "fake.png")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = l.Load(ctx, "missing.png")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
