package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"catnet/internal/metrics"
	"catnet/internal/model"
)

// Model variants.
const (
	VariantNetwork = "network"
	VariantNeuron  = "neuron"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	Variant      string   `yaml:"variant"`
	TrainDir     string   `yaml:"train_dir"`
	TestDir      string   `yaml:"test_dir"`
	ModelPath    string   `yaml:"model_path"`
	Units        []int    `yaml:"units"`
	Activations  []string `yaml:"activations"`
	LearningRate float64  `yaml:"learning_rate"`
	Iterations   int      `yaml:"iterations"`
	Seed         int64    `yaml:"seed"`
	LogEvery     int      `yaml:"log_every"`
	Epsilon      float64  `yaml:"epsilon"`
	OverfitGap   float64  `yaml:"overfit_gap"`
	CostPlot     string   `yaml:"cost_plot"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	Variant      string
	TrainDir     string
	TestDir      string
	ModelPath    string
	LearningRate float64
	Iterations   int
	Seed         int64
	LogEvery     int
	CostPlot     string
}

// Default returns the settings for variant. Units and activations cover
// the hidden and output layers; the input size comes from the data.
func Default(variant string) *Config {
	cfg := &Config{
		Variant:    VariantNetwork,
		TrainDir:   "train-set",
		TestDir:    "test-set",
		ModelPath:  "model.json",
		Seed:       1,
		LogEvery:   100,
		Epsilon:    model.DefaultEpsilon,
		OverfitGap: metrics.DefaultOverfitGap,
	}
	if variant == VariantNeuron {
		cfg.Variant = VariantNeuron
		cfg.Units = []int{1}
		cfg.Activations = []string{"sigmoid"}
		cfg.LearningRate = model.DefaultNeuronRate
		cfg.Iterations = 250
		cfg.LogEvery = 10
		return cfg
	}
	cfg.Units = []int{10, 10, 10, 1}
	cfg.Activations = []string{"relu", "relu", "relu", "sigmoid"}
	cfg.LearningRate = model.DefaultNetworkRate
	cfg.Iterations = 1700
	return cfg
}

// Load reads and validates a Config from YAML. Keys absent from the file
// keep the defaults of the variant the file names.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	cfg, err := parseYAML(f)
	if err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override. Changing the
// variant resets the architecture and schedule to that variant's defaults.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Variant != "" && o.Variant != c.Variant {
		def := Default(o.Variant)
		c.Variant = o.Variant
		c.Units = def.Units
		c.Activations = def.Activations
		c.LearningRate = def.LearningRate
		c.Iterations = def.Iterations
		c.LogEvery = def.LogEvery
	}
	if o.TrainDir != "" {
		c.TrainDir = o.TrainDir
	}
	if o.TestDir != "" {
		c.TestDir = o.TestDir
	}
	if o.ModelPath != "" {
		c.ModelPath = o.ModelPath
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Iterations > 0 {
		c.Iterations = o.Iterations
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.CostPlot != "" {
		c.CostPlot = o.CostPlot
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Variant != VariantNetwork && c.Variant != VariantNeuron {
		return errors.Errorf("variant must be %q or %q (got %q)", VariantNetwork, VariantNeuron, c.Variant)
	}
	if c.TrainDir == "" {
		return errors.New("train_dir must be set")
	}
	if c.ModelPath == "" {
		return errors.New("model_path must be set")
	}
	if len(c.Units) == 0 {
		return errors.New("units must list at least the output layer")
	}
	if len(c.Units) != len(c.Activations) {
		return errors.Errorf("got %d activations for %d layers", len(c.Activations), len(c.Units))
	}
	for i, u := range c.Units {
		if u <= 0 {
			return errors.Errorf("units[%d] must be > 0 (got %d)", i, u)
		}
	}
	if last := c.Units[len(c.Units)-1]; last != 1 {
		return errors.Errorf("output layer must have 1 unit (got %d)", last)
	}
	if _, err := model.ParseActivations(c.Activations); err != nil {
		return err
	}
	if c.Variant == VariantNeuron && (len(c.Units) != 1 || c.Activations[0] != "sigmoid") {
		return errors.New("neuron variant is a single sigmoid unit")
	}
	if c.LearningRate <= 0 {
		return errors.Errorf("learning_rate must be > 0 (got %g)", c.LearningRate)
	}
	if c.Iterations <= 0 {
		return errors.Errorf("iterations must be > 0 (got %d)", c.Iterations)
	}
	if c.Epsilon < 0 || c.Epsilon >= 0.5 {
		return errors.Errorf("epsilon must be in [0, 0.5) (got %g)", c.Epsilon)
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 100
	}
	if c.OverfitGap <= 0 {
		c.OverfitGap = metrics.DefaultOverfitGap
	}
	return nil
}

// Layers returns the full layer sizes for inputs features.
func (c *Config) Layers(inputs int) []int {
	return append([]int{inputs}, c.Units...)
}

func parseYAML(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var head struct {
		Variant string `yaml:"variant"`
	}
	if err := yaml.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	cfg := Default(head.Variant)
	if head.Variant != "" {
		cfg.Variant = head.Variant
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}
