package store

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"catnet/internal/model"
)

func TestNetworkRoundTrip(t *testing.T) {
	acts := []model.Activation{model.ReLU, model.ReLU, model.Sigmoid}
	layers, err := model.InitLayers([]int{7, 5, 3, 1}, acts, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	layers[1].B.Set(2, 0, -0.123456789012345)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, SaveNetwork(path, layers))

	got, err := LoadNetwork(path)
	require.NoError(t, err)
	require.Len(t, got, len(layers))
	for i := range layers {
		assert.True(t, mat.Equal(layers[i].W, got[i].W), "layer %d weights", i)
		assert.True(t, mat.Equal(layers[i].B, got[i].B), "layer %d bias", i)
		assert.Equal(t, acts[i], got[i].Act)
	}
}

func TestNetworkDocumentShape(t *testing.T) {
	layers := []model.Layer{{
		W:   mat.NewDense(2, 1, []float64{0.5, -1}),
		B:   mat.NewDense(2, 1, []float64{0, 0.25}),
		Act: model.ReLU,
	}, {
		W:   mat.NewDense(1, 2, []float64{2, 3}),
		B:   mat.NewDense(1, 1, []float64{-1}),
		Act: model.Sigmoid,
	}}
	var buf bytes.Buffer
	require.NoError(t, EncodeNetwork(&buf, layers))
	assert.JSONEq(t, `[
		[[[0.5], [-1]], [[0], [0.25]], "relu"],
		[[[2, 3]], [[-1]], "sigmoid"]
	]`, buf.String())
	assert.True(t, strings.HasPrefix(buf.String(), "[\n  ["))
}

func TestNeuronRoundTrip(t *testing.T) {
	n, err := model.NewNeuron(4, 0)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		n.W.Set(i, 0, float64(i)*0.1-0.15)
	}
	n.B = -0.75

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, SaveNeuron(path, n))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, -0.75, doc["b"])

	got, err := LoadNeuron(path)
	require.NoError(t, err)
	assert.True(t, mat.Equal(n.W, got.W))
	assert.Equal(t, n.B, got.B)
	assert.Equal(t, model.DefaultNeuronRate, got.LearningRate)
}

func TestSchemasAreNotInterchangeable(t *testing.T) {
	var net bytes.Buffer
	require.NoError(t, EncodeNetwork(&net, []model.Layer{{
		W: mat.NewDense(1, 2, []float64{1, 2}), B: mat.NewDense(1, 1, nil), Act: model.Sigmoid,
	}}))
	_, err := DecodeNeuron(bytes.NewReader(net.Bytes()))
	assert.ErrorIs(t, err, ErrSchema)

	_, err = DecodeNetwork(strings.NewReader(`{"w": [[1], [2]], "b": 0.5}`))
	assert.ErrorIs(t, err, ErrSchema)
}

func TestDecodeNetworkErrors(t *testing.T) {
	cases := map[string]string{
		"short triple": `[[[[1]], [[0]]]]`,
		"ragged":       `[[[[1, 2], [3]], [[0], [0]], "relu"]]`,
		"bias shape":   `[[[[1, 2]], [[0], [0]], "sigmoid"]]`,
		"chain":        `[[[[1]], [[0]], "relu"], [[[1, 2]], [[0]], "sigmoid"]]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeNetwork(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}

	_, err := DecodeNetwork(strings.NewReader(`[[[[1]], [[0]], "tanh"]]`))
	assert.ErrorIs(t, err, model.ErrUnknownActivation)

	_, err = DecodeNetwork(strings.NewReader(`[[[[1]`))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSchema)
}

func TestDecodeNeuronRequiresBothKeys(t *testing.T) {
	_, err := DecodeNeuron(strings.NewReader(`{"w": [[1]]}`))
	assert.ErrorIs(t, err, ErrSchema)
	_, err = DecodeNeuron(strings.NewReader(`{"w": [[1, 2]], "b": 0}`))
	assert.ErrorIs(t, err, ErrSchema)
	_, err = DecodeNeuron(strings.NewReader(`{"w": [[1]], "b": 0, "extra": 1}`))
	assert.ErrorIs(t, err, ErrSchema)
}

func TestSaveKeepsExistingFileOnEncodeError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	bad := []model.Layer{{W: mat.NewDense(1, 1, nil), B: mat.NewDense(1, 1, nil), Act: model.Activation(0)}}
	require.Error(t, SaveNetwork(path, bad))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(raw))
}
