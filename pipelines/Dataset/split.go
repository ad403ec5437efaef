package dataset

import (
	"fmt"
	"math"
	"math/rand"
)

// Splitter partitions a table into disjoint row subsets using a seeded
// shuffle, so repeated runs over the same data reproduce the same
// partitions.
type Splitter struct {
	Seed int64
	rand *rand.Rand
}

// NewSplitter creates a splitter with the given random seed
func NewSplitter(seed int64) *Splitter {
	return &Splitter{
		Seed: seed,
		rand: rand.New(rand.NewSource(seed)),
	}
}

// Split shuffles the rows and holds out ceil(fraction*n) of them,
// returning (rest, held).
func (s *Splitter) Split(t *Table, fraction float64) (*Table, *Table, error) {
	n := t.NumRows()
	if n == 0 {
		return nil, nil, fmt.Errorf("cannot split empty table")
	}
	if fraction <= 0 || fraction >= 1 {
		return nil, nil, fmt.Errorf("split fraction must be in (0,1), got %v", fraction)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	s.rand.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	nHeld := int(math.Ceil(fraction * float64(n)))
	if nHeld >= n {
		nHeld = n - 1
	}

	held, err := t.Subset(indices[:nHeld])
	if err != nil {
		return nil, nil, err
	}
	rest, err := t.Subset(indices[nHeld:])
	if err != nil {
		return nil, nil, err
	}
	return rest, held, nil
}

// TrainValTest performs the two-stage partition: first the test
// fraction is held out from the full table, then the validation
// fraction is held out from the remainder.
func (s *Splitter) TrainValTest(t *Table, testFraction, valFraction float64) (train, val, test *Table, err error) {
	rest, test, err := s.Split(t, testFraction)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("test split failed: %w", err)
	}
	train, val, err = s.Split(rest, valFraction)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("validation split failed: %w", err)
	}
	return train, val, test, nil
}
