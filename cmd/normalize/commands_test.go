package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFixture(t *testing.T, width, height int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "in.png")
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	require.NoError(t, imaging.Save(img, path))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(zap.NewNop())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func outputSize(t *testing.T, path string) (int, int) {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	return cfg.Width, cfg.Height
}

func TestResizeCommand(t *testing.T) {
	in := writeFixture(t, 4000, 3000)
	out := filepath.Join(t.TempDir(), "out.jpg")

	_, err := run(t, "resize", in, out)
	require.NoError(t, err)

	w, h := outputSize(t, out)
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1440, h)
}

func TestResizeCommandRejectsBadQuality(t *testing.T) {
	in := writeFixture(t, 10, 10)
	out := filepath.Join(t.TempDir(), "out.jpg")

	_, err := run(t, "resize", in, out, "--quality", "1.5")
	require.Error(t, err)
	assert.NoFileExists(t, out)
}

func TestThumbnailCommand(t *testing.T) {
	in := writeFixture(t, 600, 1200)
	out := filepath.Join(t.TempDir(), "thumb.jpg")

	_, err := run(t, "thumbnail", in, out, "--size", "100")
	require.NoError(t, err)

	w, h := outputSize(t, out)
	assert.Equal(t, 50, w)
	assert.Equal(t, 100, h)
}

func TestInspectCommand(t *testing.T) {
	in := writeFixture(t, 2500, 100)

	stdout, err := run(t, "inspect", in)
	require.NoError(t, err)

	var got struct {
		Format        string `json:"format"`
		Width         int    `json:"width"`
		NeedsResizing bool   `json:"needs_resizing"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "png", got.Format)
	assert.Equal(t, 2500, got.Width)
	assert.True(t, got.NeedsResizing)
}

func TestInspectCommandMissingFile(t *testing.T) {
	_, err := run(t, "inspect", filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
}
