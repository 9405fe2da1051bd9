package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catnet.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	net := Default(VariantNetwork)
	require.NoError(t, net.Validate())
	assert.Equal(t, 0.005, net.LearningRate)
	assert.Equal(t, 1700, net.Iterations)
	assert.Equal(t, []int{12288, 10, 10, 10, 1}, net.Layers(12288))
	assert.Equal(t, []string{"relu", "relu", "relu", "sigmoid"}, net.Activations)

	neuron := Default(VariantNeuron)
	require.NoError(t, neuron.Validate())
	assert.Equal(t, 0.0056, neuron.LearningRate)
	assert.Equal(t, 250, neuron.Iterations)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
# toy run
train_dir: data/train
units: [4, 1]
activations: [relu, sigmoid]
learning_rate: 0.01
iterations: 300
seed: 7
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, VariantNetwork, cfg.Variant)
	assert.Equal(t, "data/train", cfg.TrainDir)
	assert.Equal(t, "test-set", cfg.TestDir)
	assert.Equal(t, []int{4, 1}, cfg.Units)
	assert.Equal(t, 0.01, cfg.LearningRate)
	assert.Equal(t, 300, cfg.Iterations)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 100, cfg.LogEvery)
}

func TestLoadNeuronVariantDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "variant: neuron\nmodel_path: neuron.json\n"))
	require.NoError(t, err)
	assert.Equal(t, VariantNeuron, cfg.Variant)
	assert.Equal(t, 250, cfg.Iterations)
	assert.Equal(t, "neuron.json", cfg.ModelPath)
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, "batch_size: 64\n"))
	assert.Error(t, err)
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(VariantNetwork), cfg)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"variant":     func(c *Config) { c.Variant = "cnn" },
		"activations": func(c *Config) { c.Activations = c.Activations[:2] },
		"unknown act": func(c *Config) { c.Activations[0] = "tanh" },
		"output":      func(c *Config) { c.Units[3] = 2 },
		"rate":        func(c *Config) { c.LearningRate = 0 },
		"iterations":  func(c *Config) { c.Iterations = -1 },
		"epsilon":     func(c *Config) { c.Epsilon = 0.5 },
		"train dir":   func(c *Config) { c.TrainDir = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default(VariantNetwork)
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	neuron := Default(VariantNeuron)
	neuron.Units = []int{3, 1}
	neuron.Activations = []string{"relu", "sigmoid"}
	assert.Error(t, neuron.Validate())
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default(VariantNetwork)
	cfg.ApplyOverrides(Overrides{Iterations: 5, Seed: 3, ModelPath: "m.json"})
	assert.Equal(t, 5, cfg.Iterations)
	assert.Equal(t, int64(3), cfg.Seed)
	assert.Equal(t, "m.json", cfg.ModelPath)
	assert.Equal(t, 0.005, cfg.LearningRate)

	cfg.ApplyOverrides(Overrides{Variant: VariantNeuron})
	assert.Equal(t, VariantNeuron, cfg.Variant)
	assert.Equal(t, []int{1}, cfg.Units)
	assert.Equal(t, 250, cfg.Iterations)
	assert.Equal(t, "m.json", cfg.ModelPath)
	require.NoError(t, cfg.Validate())
}
