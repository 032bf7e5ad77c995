// Package main trains the price prediction model from CSV exports and writes
// the serialized artifact to the model directory.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"dynamic-price-optimizer/internal/config"
	"dynamic-price-optimizer/internal/dataset"
	"dynamic-price-optimizer/internal/feature"
	"dynamic-price-optimizer/internal/model"
)

func main() {
	dataDir := flag.String("data", "", "Directory with sales_data.csv, competitor_data.csv, customer_data.csv")
	modelDir := flag.String("model-dir", "", "Output directory for the model artifact (default: MODEL_DIR)")
	trees := flag.Int("trees", 0, "Number of trees (default 100)")
	maxDepth := flag.Int("max-depth", 0, "Maximum tree depth (default 10)")
	flag.Parse()

	cfg := config.Load()
	log := newLogger(cfg.LogLevel)

	if *dataDir == "" {
		fmt.Fprintln(os.Stderr, "Usage: train -data <dir> [-model-dir <dir>] [-trees N] [-max-depth N]")
		os.Exit(1)
	}
	dir := *modelDir
	if dir == "" {
		dir = cfg.ModelDir
	}

	rows, err := dataset.Load(*dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dataset: %v\n", err)
		os.Exit(1)
	}
	log.Info().Int("rows", len(rows)).Str("data", *dataDir).Msg("dataset loaded")

	x, y := dataset.Matrix(rows)

	params := model.DefaultForestParams()
	if *trees > 0 {
		params.NumTrees = *trees
	}
	if *maxDepth > 0 {
		params.MaxDepth = *maxDepth
	}

	trainer := model.NewTrainer(params)
	artifact, metrics, err := trainer.Train(x, y, feature.TrainingFeatureNames)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error training model: %v\n", err)
		os.Exit(1)
	}

	if err := artifact.Save(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving model: %v\n", err)
		os.Exit(1)
	}

	log.Info().
		Str("model_dir", dir).
		Int("trees", params.NumTrees).
		Float64("mse", metrics.MSE).
		Float64("r2", metrics.R2).
		Msg("model trained")

	fmt.Printf("Model trained on %d rows\n", len(rows))
	fmt.Printf("  Validation MSE: %.6f\n", metrics.MSE)
	fmt.Printf("  Validation R2:  %.6f\n", metrics.R2)
	fmt.Printf("  Artifact: %s\n", dir)
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}
