package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"

	"trustmarket/lead-scoring/internal/config"
	"trustmarket/lead-scoring/internal/features"
	"trustmarket/lead-scoring/internal/ml"
)

// TrainerService is the offline batch job that turns historical labeled
// leads into a versioned model artifact.
type TrainerService interface {
	Train() (*ml.Artifact, error)
}

type trainerService struct {
	cfg   config.TrainerConfig
	model config.ModelConfig
}

func NewTrainerService(cfg config.TrainerConfig, model config.ModelConfig) TrainerService {
	return &trainerService{
		cfg:   cfg,
		model: model,
	}
}

// Train implements TrainerService: load, split, fit, evaluate, persist.
// Missing or empty input data aborts before any side effect; the quality gate
// is advisory and never fails the run.
func (t *trainerService) Train() (*ml.Artifact, error) {
	log.Printf("📄 Loading training data from %s\n", t.cfg.DataPath)
	X, y, err := loadTrainingData(t.cfg.DataPath)
	if err != nil {
		return nil, err
	}
	if len(X) == 0 {
		return nil, fmt.Errorf("training data at %s has no rows", t.cfg.DataPath)
	}

	converted := 0
	for _, label := range y {
		converted += label
	}
	log.Printf("📊 Total samples: %d | Conversion rate: %.1f%%\n",
		len(y), 100*float64(converted)/float64(len(y)))

	xTrain, xTest, yTrain, yTest, err := ml.StratifiedSplit(X, y, t.cfg.TestFraction, t.cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to split training data: %w", err)
	}
	log.Printf("📊 Train set: %d samples | Test set: %d samples\n", len(xTrain), len(xTest))

	log.Println("🔄 Training model...")
	model := ml.NewGradientBoosting(t.cfg.Estimators, t.cfg.LearningRate, t.cfg.MaxDepth)
	if err := model.Fit(xTrain, yTrain); err != nil {
		return nil, fmt.Errorf("failed to fit model: %w", err)
	}

	trainScores, err := predictAll(model, xTrain)
	if err != nil {
		return nil, fmt.Errorf("failed to score training split: %w", err)
	}
	testScores, err := predictAll(model, xTest)
	if err != nil {
		return nil, fmt.Errorf("failed to score evaluation split: %w", err)
	}

	trainAUC, err := ml.AUC(yTrain, trainScores)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate training split: %w", err)
	}
	testAUC, err := ml.AUC(yTest, testScores)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate held-out split: %w", err)
	}

	log.Printf("📈 Train AUC: %.3f | Test AUC: %.3f | Gap: %.3f\n",
		trainAUC, testAUC, trainAUC-testAUC)
	log.Printf("🚦 Quality gate: %s\n", ml.QualityGate(testAUC))

	log.Println("📈 Feature importance:")
	for i, importance := range model.FeatureImportances() {
		log.Printf("   %-20s %.3f\n", features.Names[i], importance)
	}

	tp, fp, tn, fn := ml.Confusion(yTest, testScores, 0.5)
	total := tp + fp + tn + fn
	accuracy := float64(tp+tn) / float64(total)
	precision, recall := 0.0, 0.0
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	log.Printf("📊 Test accuracy: %.3f | Precision: %.3f | Recall: %.3f (threshold 0.5)\n",
		accuracy, precision, recall)

	log.Println("📈 Top-K lift:")
	for _, k := range []float64{0.10, 0.20, 0.30} {
		log.Printf("   Top %2.0f%%: %.1fx\n", k*100, ml.Lift(yTest, testScores, k))
	}

	artifact := &ml.Artifact{
		Model:    model,
		Features: features.Names,
		TrainAUC: trainAUC,
		TestAUC:  testAUC,
		Version:  t.model.Version,
	}
	if err := artifact.Save(t.model.ArtifactPath); err != nil {
		return nil, err
	}
	log.Printf("💾 Model %s saved to %s\n", artifact.Version, t.model.ArtifactPath)

	return artifact, nil
}

// loadTrainingData parses the historical CSV into feature rows and binary
// labels. Unparseable feature values degrade to a default instead of aborting
// the run; boolean-like exports (t/f, yes/no) are normalized through the
// shared label parser.
func loadTrainingData(path string) ([][]float64, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("training data not found at %s: %w", path, err)
		}
		return nil, nil, fmt.Errorf("failed to open training data: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read training data header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	required := append(append([]string{}, features.Names...), "converted")
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, nil, fmt.Errorf("training data missing column %q", name)
		}
	}

	var X [][]float64
	var y []int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read training data row: %w", err)
		}

		row := make([]float64, len(features.Names))
		for j, name := range features.Names {
			raw := record[col[name]]
			row[j] = features.CoerceNumeric(raw, float64(features.ParseBinaryLabel(raw)))
		}
		X = append(X, row)
		y = append(y, features.ParseBinaryLabel(record[col["converted"]]))
	}

	return X, y, nil
}

func predictAll(model ml.Model, X [][]float64) ([]float64, error) {
	scores := make([]float64, len(X))
	for i, row := range X {
		p, err := model.PredictProbability(row)
		if err != nil {
			return nil, err
		}
		scores[i] = p
	}
	return scores, nil
}
