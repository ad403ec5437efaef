package ml

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separableData is linearly separable on the first feature
func separableData() ([][]float64, []string, []string) {
	X := [][]float64{
		{0.1, 0.9},
		{0.2, 0.1},
		{0.3, 0.5},
		{0.7, 0.2},
		{0.8, 0.8},
		{0.9, 0.4},
	}
	y := []string{"low", "low", "low", "high", "high", "high"}
	return X, y, []string{"f1", "f2"}
}

func TestDecisionTreeTrain(t *testing.T) {
	t.Run("FitsSeparableData", func(t *testing.T) {
		X, y, names := separableData()
		dt := NewDecisionTreeClassifier(0, 2, 1)
		require.NoError(t, dt.Train(X, y, names))
		require.NoError(t, dt.Validate())

		assert.Equal(t, []string{"high", "low"}, dt.Classes)
		for i, x := range X {
			pred, conf, err := dt.Predict(x)
			require.NoError(t, err)
			assert.Equal(t, y[i], pred)
			assert.Equal(t, 1.0, conf)
		}
	})

	t.Run("MaxDepthLimitsTree", func(t *testing.T) {
		X, y, names := separableData()
		dt := NewDecisionTreeClassifier(1, 2, 1)
		require.NoError(t, dt.Train(X, y, names))
		assert.LessOrEqual(t, dt.Depth(), 1)
	})

	t.Run("InputValidation", func(t *testing.T) {
		dt := NewDecisionTreeClassifier(0, 2, 1)
		assert.Error(t, dt.Train(nil, nil, nil))
		assert.Error(t, dt.Train([][]float64{{1}}, []string{"a", "b"}, []string{"f"}))
		assert.Error(t, dt.Train([][]float64{{1, 2}}, []string{"a"}, []string{"f"}))
	})
}

func TestDecisionTreeDeterminism(t *testing.T) {
	X, y, names := separableData()

	train := func() []byte {
		dt := NewDecisionTreeClassifier(0, 2, 1)
		require.NoError(t, dt.Train(X, y, names))
		data, err := json.Marshal(dt)
		require.NoError(t, err)
		return data
	}

	first := train()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, train(), "tree structure differed on rebuild %d", i)
	}
}

func TestPredict(t *testing.T) {
	t.Run("UntrainedModel", func(t *testing.T) {
		dt := NewDecisionTreeClassifier(0, 2, 1)
		_, _, err := dt.Predict([]float64{0.5, 0.5})
		assert.Error(t, err)
	})

	t.Run("WrongFeatureCount", func(t *testing.T) {
		X, y, names := separableData()
		dt := NewDecisionTreeClassifier(0, 2, 1)
		require.NoError(t, dt.Train(X, y, names))

		_, _, err := dt.Predict([]float64{0.5})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 2 features")
	})

	t.Run("PredictProba", func(t *testing.T) {
		X, y, names := separableData()
		dt := NewDecisionTreeClassifier(0, 2, 1)
		require.NoError(t, dt.Train(X, y, names))

		proba, err := dt.PredictProba([]float64{0.1, 0.5})
		require.NoError(t, err)
		total := 0.0
		for _, p := range proba {
			total += p
		}
		assert.InDelta(t, 1.0, total, 1e-9)
	})
}

func TestFeatureImportance(t *testing.T) {
	X, y, names := separableData()
	dt := NewDecisionTreeClassifier(0, 2, 1)
	require.NoError(t, dt.Train(X, y, names))

	importance := dt.FeatureImportance()
	require.Len(t, importance, 2)

	total := 0.0
	for _, score := range importance {
		assert.GreaterOrEqual(t, score, 0.0)
		total += score
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	// the separating feature carries all the importance
	assert.Equal(t, 1.0, importance["f1"])
	assert.Equal(t, 0.0, importance["f2"])
}

func TestSaveLoad(t *testing.T) {
	X, y, names := separableData()
	dt := NewDecisionTreeClassifier(0, 2, 1)
	require.NoError(t, dt.Train(X, y, names))

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, dt.Save(path))

	loaded := &DecisionTreeClassifier{}
	require.NoError(t, loaded.Load(path))
	require.NoError(t, loaded.Validate())

	assert.Equal(t, dt.Classes, loaded.Classes)
	assert.Equal(t, dt.FeatureNames, loaded.FeatureNames)
	for _, x := range X {
		want, _, err := dt.Predict(x)
		require.NoError(t, err)
		got, _, err := loaded.Predict(x)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	t.Run("MissingFile", func(t *testing.T) {
		err := (&DecisionTreeClassifier{}).Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
}

func TestRankImportance(t *testing.T) {
	ranked := RankImportance(map[string]float64{
		"b": 0.3,
		"a": 0.3,
		"c": 0.4,
	})
	require.Len(t, ranked, 3)
	assert.Equal(t, "c", ranked[0].Feature)
	// equal scores order lexically
	assert.Equal(t, "a", ranked[1].Feature)
	assert.Equal(t, "b", ranked[2].Feature)
}

func TestFormatImportance(t *testing.T) {
	out := FormatImportance("Top features", []RankedFeature{
		{Feature: "f1", Importance: 0.75},
		{Feature: "f2", Importance: 0.25},
	}, 1)
	assert.Contains(t, out, "Top features")
	assert.Contains(t, out, "f1")
	assert.NotContains(t, out, "f2")
}
