// Package store reads and writes trained parameters as JSON.
//
// Two schemas exist and they are not interchangeable. A network is an
// array of [weights, bias, activation] triples, one per layer. A single
// neuron is an object {"w": [[...]...], "b": number}.
package store

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"catnet/internal/model"
)

// ErrSchema indicates a document that does not follow the expected schema.
var ErrSchema = errors.New("store: schema mismatch")

const indent = "  "

// EncodeNetwork writes layers as an indented JSON array of triples.
func EncodeNetwork(w io.Writer, layers []model.Layer) error {
	doc := make([][3]interface{}, len(layers))
	for i, l := range layers {
		name, err := l.Act.MarshalText()
		if err != nil {
			return errors.Wrapf(err, "layer %d", i+1)
		}
		doc[i] = [3]interface{}{rows(l.W), rows(l.B), string(name)}
	}
	return encode(w, doc)
}

// DecodeNetwork reads layers written by EncodeNetwork.
func DecodeNetwork(r io.Reader) ([]model.Layer, error) {
	var doc []json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, schemaError(err, "network")
	}
	layers := make([]model.Layer, len(doc))
	for i, raw := range doc {
		var triple []json.RawMessage
		if err := json.Unmarshal(raw, &triple); err != nil {
			return nil, schemaError(err, "layer %d", i+1)
		}
		if len(triple) != 3 {
			return nil, errors.Wrapf(ErrSchema, "layer %d: %d fields, want 3", i+1, len(triple))
		}
		var w, b [][]float64
		if err := json.Unmarshal(triple[0], &w); err != nil {
			return nil, schemaError(err, "layer %d weights", i+1)
		}
		if err := json.Unmarshal(triple[1], &b); err != nil {
			return nil, schemaError(err, "layer %d bias", i+1)
		}
		var act model.Activation
		if err := json.Unmarshal(triple[2], &act); err != nil {
			return nil, errors.Wrapf(err, "layer %d activation", i+1)
		}
		wd, err := dense(w)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d weights", i+1)
		}
		bd, err := dense(b)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d bias", i+1)
		}
		layers[i] = model.Layer{W: wd, B: bd, Act: act}
	}
	if err := model.CheckLayers(layers, 0); err != nil {
		return nil, errors.Wrap(err, "network")
	}
	return layers, nil
}

type neuronDoc struct {
	W [][]float64 `json:"w"`
	B *float64    `json:"b"`
}

// EncodeNeuron writes the neuron's weights and bias as a JSON object.
func EncodeNeuron(w io.Writer, n *model.Neuron) error {
	b := n.B
	return encode(w, neuronDoc{W: rows(n.W), B: &b})
}

// DecodeNeuron reads a neuron written by EncodeNeuron. The learning rate
// and clipping bound are set to their defaults.
func DecodeNeuron(r io.Reader) (*model.Neuron, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var doc neuronDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, schemaError(err, "neuron")
	}
	if doc.W == nil || doc.B == nil {
		return nil, errors.Wrap(ErrSchema, `neuron: "w" and "b" are required`)
	}
	w, err := dense(doc.W)
	if err != nil {
		return nil, errors.Wrap(err, "neuron weights")
	}
	if _, c := w.Dims(); c != 1 {
		return nil, errors.Wrapf(ErrSchema, "neuron weights have %d columns, want 1", c)
	}
	return &model.Neuron{
		W:            w,
		B:            *doc.B,
		LearningRate: model.DefaultNeuronRate,
		Epsilon:      model.DefaultEpsilon,
	}, nil
}

// SaveNetwork writes layers to path, replacing any existing file.
func SaveNetwork(path string, layers []model.Layer) error {
	return save(path, func(w io.Writer) error { return EncodeNetwork(w, layers) })
}

// LoadNetwork reads layers from path.
func LoadNetwork(path string) ([]model.Layer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open model")
	}
	defer f.Close()
	layers, err := DecodeNetwork(f)
	return layers, errors.Wrapf(err, "load %s", path)
}

// SaveNeuron writes n to path, replacing any existing file.
func SaveNeuron(path string, n *model.Neuron) error {
	return save(path, func(w io.Writer) error { return EncodeNeuron(w, n) })
}

// LoadNeuron reads a neuron from path.
func LoadNeuron(path string) (*model.Neuron, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open model")
	}
	defer f.Close()
	n, err := DecodeNeuron(f)
	return n, errors.Wrapf(err, "load %s", path)
}

// save renders the document in memory first so a failed encode never
// truncates an existing model.
func save(path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*.json")
	if err != nil {
		return errors.Wrap(err, "save model")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrap(err, "save model")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "save model")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "save model")
}

func encode(w io.Writer, doc interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", indent)
	return errors.Wrap(enc.Encode(doc), "encode model")
}

// schemaError marks decode failures caused by a well-formed document of
// the wrong shape as ErrSchema.
func schemaError(err error, format string, args ...interface{}) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.Wrapf(err, format, args...)
	}
	return errors.Wrapf(ErrSchema, format+": %v", append(args, err)...)
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}

func dense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.Wrap(ErrSchema, "empty matrix")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errors.Wrapf(ErrSchema, "row %d has %d values, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}
