package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitSet() SplitSet {
	X, y, _ := separableData()
	return SplitSet{
		TrainX: X, TrainY: y,
		ValX: [][]float64{{0.15, 0.3}, {0.85, 0.6}}, ValY: []string{"low", "high"},
		TestX: [][]float64{{0.25, 0.7}, {0.75, 0.1}}, TestY: []string{"low", "high"},
	}
}

func TestTrainerTrain(t *testing.T) {
	t.Run("EvaluatesAllThreePartitions", func(t *testing.T) {
		trainer := NewTrainer(nil)
		model, err := trainer.Train("Crop Type", splitSet(), []string{"f1", "f2"})
		require.NoError(t, err)

		assert.Equal(t, "Crop Type", model.Name)
		assert.Equal(t, 1.0, model.TrainAccuracy)
		assert.Equal(t, 1.0, model.ValidationAccuracy)
		assert.Equal(t, 1.0, model.TestAccuracy)
		assert.Equal(t, 6, model.TrainingRows)
		require.NotNil(t, model.TrainMetrics)
		require.NotNil(t, model.ValidationMetrics)
		require.NotNil(t, model.TestMetrics)
		assert.NotEmpty(t, model.FeatureImportance)
	})

	t.Run("EmptyTrainingData", func(t *testing.T) {
		_, err := NewTrainer(nil).Train("x", SplitSet{}, nil)
		assert.Error(t, err)
	})

	t.Run("RowCountMismatch", func(t *testing.T) {
		s := splitSet()
		s.ValY = s.ValY[:1]
		_, err := NewTrainer(nil).Train("x", s, []string{"f1", "f2"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation")
	})

	t.Run("FeatureNameMismatch", func(t *testing.T) {
		_, err := NewTrainer(nil).Train("x", splitSet(), []string{"f1"})
		assert.Error(t, err)
	})

	t.Run("HyperparametersApply", func(t *testing.T) {
		trainer := NewTrainer(&TrainingConfig{MaxDepth: 1, MinSamplesSplit: 2, MinSamplesLeaf: 1})
		model, err := trainer.Train("x", splitSet(), []string{"f1", "f2"})
		require.NoError(t, err)
		assert.LessOrEqual(t, model.Model.Depth(), 1)
	})
}

func TestEvaluate(t *testing.T) {
	X, y, names := separableData()
	dt := NewDecisionTreeClassifier(0, 2, 1)
	require.NoError(t, dt.Train(X, y, names))

	t.Run("PerfectClassifier", func(t *testing.T) {
		metrics, err := Evaluate(dt, X, y)
		require.NoError(t, err)
		assert.Equal(t, 1.0, metrics.Accuracy)
		assert.Equal(t, 6, metrics.TotalSamples)
		assert.Equal(t, 6, metrics.CorrectPredictions)
		assert.Equal(t, 1.0, metrics.MacroF1)
		assert.Equal(t, 3, metrics.Support["low"])
	})

	t.Run("EmptyData", func(t *testing.T) {
		_, err := Evaluate(dt, nil, nil)
		assert.Error(t, err)
	})
}

func TestCalculateMetrics(t *testing.T) {
	yTrue := []string{"a", "a", "b", "b"}
	yPred := []string{"a", "b", "b", "b"}

	metrics, err := CalculateMetrics(yTrue, yPred, []string{"a", "b"})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, metrics.Accuracy, 1e-9)
	assert.InDelta(t, 1.0, metrics.Precision["a"], 1e-9)
	assert.InDelta(t, 0.5, metrics.Recall["a"], 1e-9)
	assert.InDelta(t, 1.0, metrics.Recall["b"], 1e-9)
	assert.Equal(t, 1, metrics.ConfusionMatrix["a"]["b"])

	_, err = CalculateMetrics(yTrue, yPred[:2], []string{"a", "b"})
	assert.Error(t, err)
}
