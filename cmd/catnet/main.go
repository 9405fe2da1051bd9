package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"

	"catnet/internal/config"
	"catnet/internal/dataset"
	"catnet/internal/inference"
	"catnet/internal/metrics"
	"catnet/internal/model"
	"catnet/internal/report"
	"catnet/internal/store"
	"catnet/internal/trainer"
	"catnet/internal/visualize"
)

const usage = `usage: catnet <command> [flags]

commands:
  train      train a model and write it to disk
  classify   print cat/not for every image in a directory
  plot       render the learned weights as images
  readme     regenerate the automatic section of README.md
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "train":
		err = runTrain(args)
	case "classify":
		err = runClassify(args)
	case "plot":
		err = runPlot(args)
	case "readme":
		err = runReadme(args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", cmd, err)
	}
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config (built-in defaults when empty)")
	variant := fs.String("variant", "", "Model variant: network or neuron")
	trainDir := fs.String("train-dir", "", "Override training image directory")
	testDir := fs.String("test-dir", "", "Override test image directory")
	modelPath := fs.String("model", "", "Override model output path")
	iterations := fs.Int("iterations", 0, "Number of training iterations")
	learningRate := fs.Float64("learning-rate", 0, "Gradient descent learning rate")
	seed := fs.Int64("seed", 0, "PRNG seed for weight initialization")
	logEvery := fs.Int("log-every", 0, "Log every N iterations")
	costPlot := fs.String("cost-plot", "", "Write the cost curve to this image file")
	fs.Parse(args)

	cfg := config.Default(*variant)
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			return errors.Wrap(err, "load config")
		}
	}
	cfg.ApplyOverrides(config.Overrides{
		Variant:      *variant,
		TrainDir:     *trainDir,
		TestDir:      *testDir,
		ModelPath:    *modelPath,
		LearningRate: *learningRate,
		Iterations:   *iterations,
		Seed:         *seed,
		LogEvery:     *logEvery,
		CostPlot:     *costPlot,
	})
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	trainSet, err := dataset.ReadSet(cfg.TrainDir, dataset.DefaultShape)
	if err != nil {
		return err
	}
	features, _ := trainSet.X.Dims()
	log.Printf("variant=%s train_dir=%s samples=%d features=%d", cfg.Variant, cfg.TrainDir, trainSet.Len(), features)

	var testSet *dataset.Set
	if cfg.TestDir != "" {
		if testSet, err = dataset.ReadSet(cfg.TestDir, dataset.DefaultShape); err != nil {
			return err
		}
		log.Printf("test_dir=%s samples=%d", cfg.TestDir, testSet.Len())
	}

	mdl, save, err := buildModel(cfg, features)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	history, err := trainer.Run(ctx, mdl, trainSet.X, trainSet.Y, trainer.RunConfig{
		Iterations: cfg.Iterations,
		LogEvery:   cfg.LogEvery,
	})
	if err != nil {
		return errors.Wrap(err, "training failed")
	}

	trainAcc, err := accuracy(mdl, trainSet)
	if err != nil {
		return err
	}
	if testSet != nil {
		testAcc, err := accuracy(mdl, testSet)
		if err != nil {
			return err
		}
		if err := metrics.Evaluate(trainAcc, testAcc, cfg.OverfitGap).Report(os.Stdout); err != nil {
			return err
		}
	} else {
		fmt.Printf("train accuracy: %.2f%%\n", 100*trainAcc)
	}

	if err := save(cfg.ModelPath); err != nil {
		return err
	}
	log.Printf("written model to %s", cfg.ModelPath)

	if cfg.CostPlot != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.CostPlot), 0o755); err != nil {
			return errors.Wrap(err, "create plot dir")
		}
		if err := visualize.SaveCostPlot(history, cfg.CostPlot); err != nil {
			return err
		}
		log.Printf("written cost plot to %s", cfg.CostPlot)
	}
	return nil
}

// buildModel returns a freshly initialised model for cfg and a function
// that persists it in the variant's schema.
func buildModel(cfg *config.Config, features int) (model.Model, func(string) error, error) {
	if cfg.Variant == config.VariantNeuron {
		n, err := model.NewNeuron(features, cfg.LearningRate)
		if err != nil {
			return nil, nil, err
		}
		n.Epsilon = cfg.Epsilon
		return n, func(path string) error { return store.SaveNeuron(path, n) }, nil
	}

	acts, err := model.ParseActivations(cfg.Activations)
	if err != nil {
		return nil, nil, err
	}
	net, err := model.NewNetwork(cfg.Layers(features), acts, cfg.LearningRate, cfg.Seed)
	if err != nil {
		return nil, nil, err
	}
	net.Epsilon = cfg.Epsilon
	return net, func(path string) error { return store.SaveNetwork(path, net.Layers) }, nil
}

func accuracy(p model.Predictor, set *dataset.Set) (float64, error) {
	labels, err := model.Classify(p, set.X)
	if err != nil {
		return 0, err
	}
	return metrics.Accuracy(labels, set.Y)
}

func loadPredictor(variant, path string) (model.Predictor, error) {
	switch variant {
	case config.VariantNeuron:
		n, err := store.LoadNeuron(path)
		if err != nil {
			return nil, err
		}
		return n, nil
	case config.VariantNetwork:
		layers, err := store.LoadNetwork(path)
		if err != nil {
			return nil, err
		}
		return &model.Network{Layers: layers}, nil
	}
	return nil, errors.Errorf("unknown variant %q", variant)
}

func runClassify(args []string) error {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	modelPath := fs.String("model", "model.json", "Path to the trained model")
	variant := fs.String("variant", config.VariantNetwork, "Model variant: network or neuron")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: catnet classify [flags] [DIR]")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	dir := "extra-set"
	switch fs.NArg() {
	case 0:
	case 1:
		dir = fs.Arg(0)
	default:
		fs.Usage()
		os.Exit(2)
	}

	p, err := loadPredictor(*variant, *modelPath)
	if err != nil {
		return err
	}
	results, err := inference.Dir(p, dir, dataset.DefaultShape)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%s: %s\n", r.Path, r.Label)
	}
	return nil
}

func runPlot(args []string) error {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	modelPath := fs.String("model", "model.json", "Path to the trained model")
	variant := fs.String("variant", config.VariantNeuron, "Model variant: network or neuron")
	out := fs.String("out", "plots", "Directory for the weight images")
	fs.Parse(args)

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return errors.Wrap(err, "create plot dir")
	}

	var (
		paths []string
		err   error
	)
	switch *variant {
	case config.VariantNeuron:
		n, lerr := store.LoadNeuron(*modelPath)
		if lerr != nil {
			return lerr
		}
		paths, err = visualize.SaveNeuronWeights(*out, n.W, dataset.DefaultShape)
	case config.VariantNetwork:
		layers, lerr := store.LoadNetwork(*modelPath)
		if lerr != nil {
			return lerr
		}
		paths, err = visualize.SaveUnitWeights(*out, layers[0].W, dataset.DefaultShape)
	default:
		return errors.Errorf("unknown variant %q", *variant)
	}
	if err != nil {
		return err
	}
	log.Printf("written %d weight images to %s", len(paths), *out)
	return nil
}

func runReadme(args []string) error {
	fs := flag.NewFlagSet("readme", flag.ExitOnError)
	modelPath := fs.String("model", "model.json", "Path to the trained model")
	variant := fs.String("variant", config.VariantNetwork, "Model variant: network or neuron")
	readme := fs.String("readme", "README.md", "Document to update")
	trainDir := fs.String("train-dir", "train-set", "Training image directory")
	testDir := fs.String("test-dir", "test-set", "Test image directory")
	fs.Parse(args)

	p, err := loadPredictor(*variant, *modelPath)
	if err != nil {
		return err
	}
	train, err := inference.Dir(p, *trainDir, dataset.DefaultShape)
	if err != nil {
		return err
	}
	test, err := inference.Dir(p, *testDir, dataset.DefaultShape)
	if err != nil {
		return err
	}
	if err := report.Update(*readme, train, test); err != nil {
		return err
	}
	log.Printf("updated %s test_accuracy=%.2f%%", *readme, 100*inference.Accuracy(test))
	return nil
}
