package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dynamic-price-optimizer/internal/apperr"
)

// ArtifactFileName is the bundle file inside a model directory.
const ArtifactFileName = "artifact.json"

// Artifact is the immutable bundle of a fitted regressor, its fitted input
// scaler, and the ordered feature-column schema used at fit time. Each
// artifact is self-consistent; schema compatibility across artifacts is the
// caller's responsibility. No timestamp is stored so the same training
// inputs serialize byte-identically.
type Artifact struct {
	FeatureNames []string        `json:"feature_names"`
	Scaler       *StandardScaler `json:"scaler"`
	Forest       *Forest         `json:"forest"`
	Metrics      Metrics         `json:"metrics"`
}

// Save writes the artifact to dir/artifact.json. The write is atomic at the
// bundle granularity: content goes to a temp file in the same directory and
// is renamed into place, so a reader never observes a partial bundle.
func (a *Artifact) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &apperr.ConfigError{Key: "model_path", Reason: fmt.Sprintf("cannot create output directory: %v", err)}
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "artifact-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, ArtifactFileName)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename artifact into place: %w", err)
	}
	return nil
}

// LoadArtifact reads dir/artifact.json. Missing or corrupt bundles are
// ModelErrors, fatal to the predict request that needed them.
func LoadArtifact(dir string) (*Artifact, error) {
	path := filepath.Join(dir, ArtifactFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperr.ModelError{Path: path, Err: err}
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, &apperr.ModelError{Path: path, Err: fmt.Errorf("corrupt artifact: %w", err)}
	}
	if len(a.FeatureNames) == 0 || a.Scaler == nil || a.Forest == nil {
		return nil, &apperr.ModelError{Path: path, Err: fmt.Errorf("incomplete artifact bundle")}
	}
	if len(a.FeatureNames) != a.Forest.NumFeatures || len(a.FeatureNames) != len(a.Scaler.Means) {
		return nil, &apperr.ModelError{Path: path, Err: fmt.Errorf("artifact schema mismatch between forest, scaler and feature names")}
	}
	return &a, nil
}
