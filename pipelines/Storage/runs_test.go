package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openHistory(t *testing.T) *RunHistory {
	t.Helper()
	history, err := OpenRunHistory(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { history.Close() })
	return history
}

func TestRunHistory(t *testing.T) {
	t.Run("RecordAssignsID", func(t *testing.T) {
		history := openHistory(t)

		id, err := history.Record(RunRecord{
			DatasetPath:        "data/crop_dataset.csv",
			TrainRows:          72,
			ValidationRows:     13,
			TestRows:           15,
			CropAccuracy:       0.93,
			FertilizerAccuracy: 0.87,
			ArtifactsDir:       "models",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		records, err := history.List()
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, id, records[0].ID)
		assert.Equal(t, 72, records[0].TrainRows)
		assert.InDelta(t, 0.93, records[0].CropAccuracy, 1e-9)
		assert.False(t, records[0].StartedAt.IsZero())
	})

	t.Run("KeepsExplicitID", func(t *testing.T) {
		history := openHistory(t)

		id, err := history.Record(RunRecord{ID: "run-001", DatasetPath: "d.csv"})
		require.NoError(t, err)
		assert.Equal(t, "run-001", id)

		// a duplicate ID violates the primary key
		_, err = history.Record(RunRecord{ID: "run-001", DatasetPath: "d.csv"})
		assert.Error(t, err)
	})

	t.Run("ListsNewestFirst", func(t *testing.T) {
		history := openHistory(t)

		base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			_, err := history.Record(RunRecord{
				StartedAt:   base.Add(time.Duration(i) * time.Hour),
				DatasetPath: "d.csv",
			})
			require.NoError(t, err)
		}

		records, err := history.List()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, base.Add(2*time.Hour), records[0].StartedAt)
		assert.Equal(t, base, records[2].StartedAt)
	})

	t.Run("EmptyHistory", func(t *testing.T) {
		history := openHistory(t)
		records, err := history.List()
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
