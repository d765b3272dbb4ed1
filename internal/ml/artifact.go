package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrSchemaMismatch is returned when a caller's feature order does not match
// what the artifact was trained on. Reordering or dropping features silently
// would corrupt every score produced, so this is fatal for a scoring run.
var ErrSchemaMismatch = errors.New("feature schema mismatch")

// Artifact is the versioned, persisted bundle a training run produces and
// every scoring run loads: the fitted model, the feature-name order it
// expects, and its quality metrics. Immutable after creation.
type Artifact struct {
	Model    *GradientBoosting `json:"model"`
	Features []string          `json:"features"`
	TrainAUC float64           `json:"train_auc"`
	TestAUC  float64           `json:"test_auc"`
	Version  string            `json:"version"`
}

// CheckSchema verifies the caller computes features in exactly the order the
// model was trained on.
func (a *Artifact) CheckSchema(names []string) error {
	if len(names) != len(a.Features) {
		return fmt.Errorf("%w: got %d features, artifact expects %d", ErrSchemaMismatch, len(names), len(a.Features))
	}
	for i, name := range names {
		if name != a.Features[i] {
			return fmt.Errorf("%w: position %d is %q, artifact expects %q", ErrSchemaMismatch, i, name, a.Features[i])
		}
	}
	return nil
}

// PredictProbability checks the feature schema and runs inference.
func (a *Artifact) PredictProbability(names []string, features []float64) (float64, error) {
	if err := a.CheckSchema(names); err != nil {
		return 0, err
	}
	return a.Model.PredictProbability(features)
}

// Save writes the artifact atomically: serialize to a temp file in the target
// directory, then rename over the destination. A scoring run loading the
// artifact concurrently sees either the old bundle or the new one, never a
// partial write.
func (a *Artifact) Save(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize model artifact: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write model artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp artifact file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace model artifact: %w", err)
	}
	return nil
}

// LoadArtifact reads a previously saved artifact. A missing file is a
// configuration error: scoring without a trained model cannot proceed.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("model artifact not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}
	if artifact.Model == nil || len(artifact.Features) == 0 {
		return nil, fmt.Errorf("model artifact at %s is incomplete", path)
	}
	if artifact.Model.NumFeatures != len(artifact.Features) {
		return nil, fmt.Errorf("model artifact at %s: model expects %d features but %d names are declared",
			path, artifact.Model.NumFeatures, len(artifact.Features))
	}

	return &artifact, nil
}
