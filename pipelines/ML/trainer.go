package ml

import (
	"fmt"
	"time"
)

// TrainingConfig holds hyperparameters for training a classifier
type TrainingConfig struct {
	MaxDepth        int `json:"max_depth"` // 0 = unlimited
	MinSamplesSplit int `json:"min_samples_split"`
	MinSamplesLeaf  int `json:"min_samples_leaf"`
}

// DefaultTrainingConfig returns a training config with sensible defaults
func DefaultTrainingConfig() *TrainingConfig {
	return &TrainingConfig{
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
}

// SplitSet carries the pre-partitioned feature matrices and target
// vectors for one prediction task. The partitions originate from one
// shared table split, so their row counts already agree pairwise; the
// trainer still verifies this before fitting.
type SplitSet struct {
	TrainX [][]float64
	TrainY []string
	ValX   [][]float64
	ValY   []string
	TestX  [][]float64
	TestY  []string
}

// TrainedModel holds a fitted classifier and its split accuracies
type TrainedModel struct {
	Name               string                  `json:"name"`
	Model              *DecisionTreeClassifier `json:"-"`
	TrainAccuracy      float64                 `json:"train_accuracy"`
	ValidationAccuracy float64                 `json:"validation_accuracy"`
	TestAccuracy       float64                 `json:"test_accuracy"`
	TrainMetrics       *EvaluationMetrics      `json:"train_metrics,omitempty"`
	ValidationMetrics  *EvaluationMetrics      `json:"validation_metrics,omitempty"`
	TestMetrics        *EvaluationMetrics      `json:"test_metrics,omitempty"`
	TrainingRows       int                     `json:"training_rows"`
	TrainingDuration   time.Duration           `json:"training_duration"`
	FeatureImportance  map[string]float64      `json:"feature_importance"`
}

// Trainer fits a classifier for one target label over pre-split data
type Trainer struct {
	Config *TrainingConfig
}

// NewTrainer creates a trainer with the given configuration
func NewTrainer(config *TrainingConfig) *Trainer {
	if config == nil {
		config = DefaultTrainingConfig()
	}
	return &Trainer{Config: config}
}

// Train fits a classifier on the training partition and evaluates it
// on all three partitions.
func (t *Trainer) Train(name string, s SplitSet, featureNames []string) (*TrainedModel, error) {
	if len(s.TrainX) == 0 || len(s.TrainY) == 0 {
		return nil, fmt.Errorf("empty training data for %q", name)
	}
	if len(s.TrainX) != len(s.TrainY) {
		return nil, fmt.Errorf("%q: training features and targets must have same number of rows: %d vs %d", name, len(s.TrainX), len(s.TrainY))
	}
	if len(s.ValX) != len(s.ValY) {
		return nil, fmt.Errorf("%q: validation features and targets must have same number of rows: %d vs %d", name, len(s.ValX), len(s.ValY))
	}
	if len(s.TestX) != len(s.TestY) {
		return nil, fmt.Errorf("%q: test features and targets must have same number of rows: %d vs %d", name, len(s.TestX), len(s.TestY))
	}
	if len(featureNames) != len(s.TrainX[0]) {
		return nil, fmt.Errorf("%q: feature names must match number of features: %d vs %d", name, len(featureNames), len(s.TrainX[0]))
	}

	startTime := time.Now()

	classifier := NewDecisionTreeClassifier(
		t.Config.MaxDepth,
		t.Config.MinSamplesSplit,
		t.Config.MinSamplesLeaf,
	)
	if err := classifier.Train(s.TrainX, s.TrainY, featureNames); err != nil {
		return nil, fmt.Errorf("failed to train %q: %w", name, err)
	}

	trainingDuration := time.Since(startTime)

	trainMetrics, err := Evaluate(classifier, s.TrainX, s.TrainY)
	if err != nil {
		return nil, fmt.Errorf("%q: failed to evaluate on training set: %w", name, err)
	}

	result := &TrainedModel{
		Name:              name,
		Model:             classifier,
		TrainAccuracy:     trainMetrics.Accuracy,
		TrainMetrics:      trainMetrics,
		TrainingRows:      len(s.TrainX),
		TrainingDuration:  trainingDuration,
		FeatureImportance: classifier.FeatureImportance(),
	}

	if len(s.ValX) > 0 {
		valMetrics, err := Evaluate(classifier, s.ValX, s.ValY)
		if err != nil {
			return nil, fmt.Errorf("%q: failed to evaluate on validation set: %w", name, err)
		}
		result.ValidationAccuracy = valMetrics.Accuracy
		result.ValidationMetrics = valMetrics
	}
	if len(s.TestX) > 0 {
		testMetrics, err := Evaluate(classifier, s.TestX, s.TestY)
		if err != nil {
			return nil, fmt.Errorf("%q: failed to evaluate on test set: %w", name, err)
		}
		result.TestAccuracy = testMetrics.Accuracy
		result.TestMetrics = testMetrics
	}

	return result, nil
}
