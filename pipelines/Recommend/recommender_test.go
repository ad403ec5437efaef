package recommend

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dataset "github.com/FarmSight/FarmSight-Go/pipelines/Dataset"
	ml "github.com/FarmSight/FarmSight-Go/pipelines/ML"
	preprocess "github.com/FarmSight/FarmSight-Go/pipelines/Preprocess"
)

var (
	soilColumns   = []string{"Temparature", "Humidity", "Moisture", "Nitrogen", "Potassium", "Phosphorous", "Soil Type"}
	numericInputs = []string{"Temparature", "Humidity", "Moisture", "Nitrogen", "Potassium", "Phosphorous"}
)

func soilTable() *dataset.Table {
	return &dataset.Table{
		Columns: soilColumns,
		Rows: [][]string{
			{"26", "52", "38", "37", "0", "0", "Sandy"},
			{"29", "52", "45", "12", "0", "36", "Loamy"},
			{"34", "65", "62", "7", "9", "30", "Black"},
			{"32", "62", "34", "22", "0", "20", "Red"},
		},
	}
}

func fittedRecommender(t *testing.T, in string) (*Recommender, *bytes.Buffer) {
	t.Helper()

	train := soilTable()
	pipeline, err := preprocess.Fit(train, soilColumns, numericInputs, []string{"Soil Type"})
	require.NoError(t, err)

	X, err := pipeline.Transform(train)
	require.NoError(t, err)

	cropModel := ml.NewDecisionTreeClassifier(0, 2, 1)
	require.NoError(t, cropModel.Train(X, []string{"Maize", "Sugarcane", "Cotton", "Tobacco"}, pipeline.FeatureNames()))
	fertilizerModel := ml.NewDecisionTreeClassifier(0, 2, 1)
	require.NoError(t, fertilizerModel.Train(X, []string{"Urea", "DAP", "14-35-14", "28-28"}, pipeline.FeatureNames()))

	out := &bytes.Buffer{}
	return &Recommender{
		Pipeline:        pipeline,
		CropModel:       cropModel,
		FertilizerModel: fertilizerModel,
		Weather:         failingWeather{},
		Location:        "Bengaluru",
		In:              strings.NewReader(in),
		Out:             out,
	}, out
}

func TestRecommenderRun(t *testing.T) {
	t.Run("EndToEndWithFallbackWeather", func(t *testing.T) {
		// nitrogen 37, potassium 0, phosphorous 0, first soil type
		r, out := fittedRecommender(t, "37\n0\n0\n0\n")

		rec, err := r.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, FallbackConditions, rec.Conditions)
		assert.Equal(t, 50.0, rec.Moisture)

		assert.Equal(t, "25", rec.Record[TemperatureColumn])
		assert.Equal(t, "60", rec.Record[HumidityColumn])
		assert.Equal(t, "50", rec.Record[MoistureColumn])
		assert.Equal(t, "37", rec.Record["Nitrogen"])
		assert.Equal(t, "0", rec.Record["Potassium"])
		assert.Equal(t, "0", rec.Record["Phosphorous"])
		// fitted vocabulary is sorted, so index 0 is Black
		assert.Equal(t, "Black", rec.Record["Soil Type"])

		assert.Len(t, rec.Features, r.Pipeline.NumFeatures())
		assert.NotEmpty(t, rec.CropType)
		assert.NotEmpty(t, rec.FertilizerName)
		assert.Contains(t, []string{"Maize", "Sugarcane", "Cotton", "Tobacco"}, rec.CropType)
		assert.Contains(t, []string{"Urea", "DAP", "14-35-14", "28-28"}, rec.FertilizerName)

		assert.Contains(t, out.String(), "Predicted crop type")
		assert.Contains(t, out.String(), "Predicted fertilizer name")
	})

	t.Run("RepromptsOnNonNumericInput", func(t *testing.T) {
		r, out := fittedRecommender(t, "abc\n37\n0\n0\n0\n")

		rec, err := r.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "37", rec.Record["Nitrogen"])
		assert.Contains(t, out.String(), "Please enter a whole number.")
	})

	t.Run("RepromptsOnOutOfRangeSoilSelection", func(t *testing.T) {
		// 9 and -1 are rejected before 0 is accepted
		r, out := fittedRecommender(t, "37\n0\n0\n9\n-1\n0\n")

		rec, err := r.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Black", rec.Record["Soil Type"])
		assert.Contains(t, out.String(), "out of range")
	})

	t.Run("InputClosedEarly", func(t *testing.T) {
		r, _ := fittedRecommender(t, "37\n")
		_, err := r.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input closed")
	})

	t.Run("MissingDependencies", func(t *testing.T) {
		r := &Recommender{}
		_, err := r.Run(context.Background())
		assert.Error(t, err)
	})
}

func TestRecommenderListsSoilOptions(t *testing.T) {
	r, out := fittedRecommender(t, "37\n0\n0\n3\n")

	rec, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sandy", rec.Record["Soil Type"])

	for _, line := range []string{"0: Black", "1: Loamy", "2: Red", "3: Sandy"} {
		assert.Contains(t, out.String(), line)
	}
}
