package dataset

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int, fill color.Color) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestListImagesOrderAndFilter(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "002-not.png"), 2, 2, color.White)
	writePNG(t, filepath.Join(dir, "001-cat.png"), 2, 2, color.White)
	writePNG(t, filepath.Join(dir, ".hidden.png"), 2, 2, color.White)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))

	paths, err := ListImages(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "001-cat.png"),
		filepath.Join(dir, "002-not.png"),
	}, paths)

	_, err = ListImages(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestLabelFor(t *testing.T) {
	assert.Equal(t, 1.0, LabelFor("train-set/007-cat.png"))
	assert.Equal(t, 1.0, LabelFor("bobcat.png"))
	assert.Equal(t, 0.0, LabelFor("train-set/008-not.png"))
	assert.Equal(t, 0.0, LabelFor("cats-dir/dog.png"))
}

func TestReadSet(t *testing.T) {
	dir := t.TempDir()
	shape := Shape{Width: 3, Height: 2}
	writePNG(t, filepath.Join(dir, "000-cat.png"), 3, 2, color.NRGBA{R: 255, G: 0, B: 51, A: 255})
	writePNG(t, filepath.Join(dir, "001-not.png"), 3, 2, color.NRGBA{R: 0, G: 255, B: 0, A: 128})

	set, err := ReadSet(dir, shape)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	r, c := set.X.Dims()
	assert.Equal(t, shape.Features(), r)
	assert.Equal(t, 2, c)
	assert.Equal(t, []float64{1, 0}, set.Y.RawMatrix().Data)

	assert.Equal(t, 1.0, set.X.At(0, 0))
	assert.Equal(t, 0.0, set.X.At(1, 0))
	assert.InDelta(t, 0.2, set.X.At(2, 0), 1e-12)
	assert.Equal(t, 1.0, set.X.At(1, 1), "alpha must not scale colour")
	for i := 0; i < r; i++ {
		v := set.X.At(i, 1)
		assert.True(t, v >= 0 && v <= 1)
	}
}

func TestReadSetRejectsWrongSize(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a-cat.png"), 4, 4, color.Black)
	writePNG(t, filepath.Join(dir, "b-not.png"), 5, 4, color.Black)

	_, err := ReadSet(dir, Shape{Width: 4, Height: 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImageSize)
}

func TestReadSetEmpty(t *testing.T) {
	_, err := ReadSet(t.TempDir(), DefaultShape)
	assert.ErrorIs(t, err, ErrEmpty)
}
