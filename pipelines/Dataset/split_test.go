package dataset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTable(n int) *Table {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("%d", i)}
	}
	return &Table{Columns: []string{"ID"}, Rows: rows}
}

func TestSplit(t *testing.T) {
	t.Run("HeldSizeRoundsUp", func(t *testing.T) {
		table := makeTable(10)
		rest, held, err := NewSplitter(42).Split(table, 0.15)
		require.NoError(t, err)
		// ceil(0.15 * 10) = 2
		assert.Equal(t, 2, held.NumRows())
		assert.Equal(t, 8, rest.NumRows())
	})

	t.Run("PartitionIsDisjointAndExhaustive", func(t *testing.T) {
		table := makeTable(100)
		rest, held, err := NewSplitter(7).Split(table, 0.3)
		require.NoError(t, err)

		seen := make(map[string]int)
		for _, row := range rest.Rows {
			seen[row[0]]++
		}
		for _, row := range held.Rows {
			seen[row[0]]++
		}
		assert.Len(t, seen, 100)
		for id, count := range seen {
			assert.Equal(t, 1, count, "row %s appeared %d times", id, count)
		}
	})

	t.Run("SameSeedSamePartition", func(t *testing.T) {
		table := makeTable(50)
		restA, heldA, err := NewSplitter(42).Split(table, 0.2)
		require.NoError(t, err)
		restB, heldB, err := NewSplitter(42).Split(table, 0.2)
		require.NoError(t, err)

		assert.Equal(t, restA.Rows, restB.Rows)
		assert.Equal(t, heldA.Rows, heldB.Rows)
	})

	t.Run("InvalidFraction", func(t *testing.T) {
		table := makeTable(10)
		_, _, err := NewSplitter(1).Split(table, 0)
		assert.Error(t, err)
		_, _, err = NewSplitter(1).Split(table, 1)
		assert.Error(t, err)
	})

	t.Run("EmptyTable", func(t *testing.T) {
		_, _, err := NewSplitter(1).Split(&Table{Columns: []string{"A"}}, 0.5)
		assert.Error(t, err)
	})
}

func TestTrainValTest(t *testing.T) {
	table := makeTable(100)
	train, val, test, err := NewSplitter(42).TrainValTest(table, 0.15, 0.15)
	require.NoError(t, err)

	// test = ceil(0.15*100) = 15, val = ceil(0.15*85) = 13, train = 72
	assert.Equal(t, 15, test.NumRows())
	assert.Equal(t, 13, val.NumRows())
	assert.Equal(t, 72, train.NumRows())
	assert.Equal(t, 100, train.NumRows()+val.NumRows()+test.NumRows())
}
