package visualize

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"catnet/internal/dataset"
	"catnet/internal/metrics"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, Normalize([]float64{-2, 0, 2}))
	assert.Equal(t, []float64{0, 0}, Normalize([]float64{3, 3}))
	assert.Empty(t, Normalize(nil))
}

func TestChannel(t *testing.T) {
	// Two pixels: red weight +2 then red weight -4.
	w := []float64{2, 9, 9, -4, -9, 9}

	red := Channel(w, 0)
	assert.Equal(t, []float64{1, 0, 0, 0, 1, 1}, red)

	green := Channel(w, 1)
	assert.Equal(t, []float64{0, 1, 0, 1, 0, 1}, green)

	assert.Equal(t, make([]float64, 6), Channel(w, 5))
	assert.Equal(t, make([]float64, 3), Channel([]float64{0, 1, 1}, 0), "no negative weights, nothing drawn")
}

func TestSaveNeuronWeights(t *testing.T) {
	shape := dataset.Shape{Width: 2, Height: 1}
	w := mat.NewDense(6, 1, []float64{1, -1, 0.5, 0, 0.25, -0.5})
	dir := t.TempDir()

	paths, err := SaveNeuronWeights(dir, w, shape)
	require.NoError(t, err)
	require.Len(t, paths, 4)
	assert.Equal(t, filepath.Join(dir, "w.png"), paths[0])

	f, err := os.Open(paths[0])
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
	r, g, _, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(0xffff), a)
}

func TestSaveUnitWeights(t *testing.T) {
	shape := dataset.Shape{Width: 1, Height: 1}
	w := mat.NewDense(3, 3, []float64{
		1, 2, 3,
		0, 0, 0,
		-1, 0, 1,
	})
	paths, err := SaveUnitWeights(t.TempDir(), w, shape)
	require.NoError(t, err)
	assert.Len(t, paths, 3)
	assert.Equal(t, "unit-02.png", filepath.Base(paths[2]))

	_, err = SaveUnitWeights(t.TempDir(), w, dataset.Shape{Width: 2, Height: 2})
	assert.Error(t, err)
}

func TestSaveCostPlot(t *testing.T) {
	history := metrics.History{{Iteration: 1, Cost: 0.69}, {Iteration: 2, Cost: 0.5}, {Iteration: 3, Cost: 0.4}}
	path := filepath.Join(t.TempDir(), "cost.png")
	require.NoError(t, SaveCostPlot(history, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, SaveCostPlot(nil, path))
}
