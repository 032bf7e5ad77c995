// Package main serves one price prediction for a JSON record, read from a
// file or stdin, against a previously trained artifact.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"dynamic-price-optimizer/internal/config"
	"dynamic-price-optimizer/internal/predictor"
)

func main() {
	modelDir := flag.String("model-dir", "", "Directory with the model artifact (default: MODEL_DIR)")
	input := flag.String("input", "-", "JSON record file, or - for stdin")
	maxChange := flag.Float64("max-change", 0.20, "Clamp the prediction to within this fraction of the current price; 0 disables")
	flag.Parse()

	cfg := config.Load()
	dir := *modelDir
	if dir == "" {
		dir = cfg.ModelDir
	}

	data, err := readInput(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	p, err := predictor.Load(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading model: %v\n", err)
		os.Exit(1)
	}

	req, err := predictor.ParseRequest(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid request: %v\n", err)
		os.Exit(1)
	}

	result, err := p.Predict(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Prediction failed: %v\n", err)
		os.Exit(1)
	}
	result.PredictedPrice = predictor.ConstrainPrice(result.PredictedPrice, *req.Price, *maxChange)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
