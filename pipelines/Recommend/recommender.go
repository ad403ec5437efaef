package recommend

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	ml "github.com/FarmSight/FarmSight-Go/pipelines/ML"
	preprocess "github.com/FarmSight/FarmSight-Go/pipelines/Preprocess"
)

// Column names the weather context supplies. Every other numeric input
// column is collected interactively. "Temparature" preserves the
// source dataset's header spelling.
const (
	TemperatureColumn = "Temparature"
	HumidityColumn    = "Humidity"
	MoistureColumn    = "Moisture"
)

// state is a phase of the interactive recommendation flow
type state int

const (
	stateAcquireContext state = iota
	stateAcquireSoilInput
	statePredict
	stateDone
)

// Recommendation is the outcome of one interactive prediction
type Recommendation struct {
	Conditions           Conditions         `json:"conditions"`
	Moisture             float64            `json:"moisture"`
	Record               map[string]string  `json:"record"`
	Features             []float64          `json:"features"`
	CropType             string             `json:"crop_type"`
	CropConfidence       float64            `json:"crop_confidence"`
	FertilizerName       string             `json:"fertilizer_name"`
	FertilizerConfidence float64            `json:"fertilizer_confidence"`
}

// Recommender walks three sequential states: acquire the weather
// context, acquire soil measurements interactively, then query both
// fitted models through the already-fitted preprocessing pipeline.
type Recommender struct {
	Pipeline        *preprocess.Pipeline
	CropModel       *ml.DecisionTreeClassifier
	FertilizerModel *ml.DecisionTreeClassifier
	Weather         WeatherClient
	Location        string

	In  io.Reader
	Out io.Writer
}

// Run executes the recommendation flow to completion
func (r *Recommender) Run(ctx context.Context) (*Recommendation, error) {
	if r.Pipeline == nil || r.CropModel == nil || r.FertilizerModel == nil {
		return nil, fmt.Errorf("recommender requires a fitted pipeline and both trained models")
	}

	reader := bufio.NewReader(r.In)
	rec := &Recommendation{Record: make(map[string]string)}

	for s := stateAcquireContext; s != stateDone; {
		switch s {
		case stateAcquireContext:
			r.acquireContext(ctx, rec)
			s = stateAcquireSoilInput
		case stateAcquireSoilInput:
			if err := r.acquireSoilInput(reader, rec); err != nil {
				return nil, err
			}
			s = statePredict
		case statePredict:
			if err := r.predict(rec); err != nil {
				return nil, err
			}
			s = stateDone
		}
	}
	return rec, nil
}

// acquireContext fills the weather-derived numeric columns. A fetch
// failure is absorbed by the fallback defaults inside
// CurrentOrFallback, so this state cannot fail.
func (r *Recommender) acquireContext(ctx context.Context, rec *Recommendation) {
	fmt.Fprintf(r.Out, "Fetching current weather for %s...\n", r.Location)
	rec.Conditions = CurrentOrFallback(ctx, r.Weather, r.Location)
	rec.Moisture = EstimateMoisture(rec.Conditions.HumidityPct)

	fmt.Fprintf(r.Out, "  Temperature: %.1f C\n", rec.Conditions.TemperatureC)
	fmt.Fprintf(r.Out, "  Humidity:    %.0f%%\n", rec.Conditions.HumidityPct)
	fmt.Fprintf(r.Out, "  Estimated soil moisture: %.0f\n", rec.Moisture)

	rec.Record[TemperatureColumn] = strconv.FormatFloat(rec.Conditions.TemperatureC, 'f', -1, 64)
	rec.Record[HumidityColumn] = strconv.FormatFloat(rec.Conditions.HumidityPct, 'f', -1, 64)
	rec.Record[MoistureColumn] = strconv.FormatFloat(rec.Moisture, 'f', -1, 64)
}

// acquireSoilInput prompts for every numeric column the weather
// context did not supply, then for each categorical column as a
// bounds-checked selection over the encoder's fitted vocabulary.
func (r *Recommender) acquireSoilInput(reader *bufio.Reader, rec *Recommendation) error {
	fmt.Fprintln(r.Out, "\nTell us about your soil's current conditions:")

	for _, col := range r.Pipeline.NumericColumns {
		if _, ok := rec.Record[col]; ok {
			continue
		}
		value, err := r.promptInt(reader, fmt.Sprintf("  Enter %s value: ", col))
		if err != nil {
			return err
		}
		rec.Record[col] = strconv.Itoa(value)
	}

	for _, col := range r.Pipeline.CategoricalColumns {
		levels, ok := r.Pipeline.Encoder.Levels(col)
		if !ok || len(levels) == 0 {
			return fmt.Errorf("no fitted vocabulary for column %q", col)
		}
		fmt.Fprintf(r.Out, "\nSelect %s from the options below:\n", col)
		for i, level := range levels {
			fmt.Fprintf(r.Out, "  %d: %s\n", i, level)
		}
		choice, err := r.promptChoice(reader, fmt.Sprintf("  Enter the number for your %s: ", col), len(levels))
		if err != nil {
			return err
		}
		rec.Record[col] = levels[choice]
		fmt.Fprintf(r.Out, "  You selected: %s\n", levels[choice])
	}
	return nil
}

// predict assembles the single-row record, passes it through the
// fitted pipeline without refitting, and queries both models.
func (r *Recommender) predict(rec *Recommendation) error {
	features, err := r.Pipeline.TransformRow(rec.Record)
	if err != nil {
		return fmt.Errorf("failed to preprocess live input: %w", err)
	}
	rec.Features = features

	crop, cropConf, err := r.CropModel.Predict(features)
	if err != nil {
		return fmt.Errorf("crop prediction failed: %w", err)
	}
	fertilizer, fertConf, err := r.FertilizerModel.Predict(features)
	if err != nil {
		return fmt.Errorf("fertilizer prediction failed: %w", err)
	}

	rec.CropType = crop
	rec.CropConfidence = cropConf
	rec.FertilizerName = fertilizer
	rec.FertilizerConfidence = fertConf

	fmt.Fprintf(r.Out, "\nPredicted crop type:       %s (confidence %.2f)\n", strings.ToUpper(crop), cropConf)
	fmt.Fprintf(r.Out, "Predicted fertilizer name: %s (confidence %.2f)\n", strings.ToUpper(fertilizer), fertConf)
	return nil
}

// promptInt reads an integer, re-prompting until one parses
func (r *Recommender) promptInt(reader *bufio.Reader, label string) (int, error) {
	for {
		fmt.Fprint(r.Out, label)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return 0, fmt.Errorf("input closed before a value was entered: %w", err)
		}
		value, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr != nil {
			fmt.Fprintln(r.Out, "  Please enter a whole number.")
			if err != nil {
				return 0, fmt.Errorf("input closed before a valid value was entered")
			}
			continue
		}
		return value, nil
	}
}

// promptChoice reads an index and rejects anything outside [0, n),
// re-prompting instead of faulting on an out-of-range selection.
func (r *Recommender) promptChoice(reader *bufio.Reader, label string, n int) (int, error) {
	for {
		choice, err := r.promptInt(reader, label)
		if err != nil {
			return 0, err
		}
		if choice < 0 || choice >= n {
			fmt.Fprintf(r.Out, "  Selection %d is out of range; enter a number between 0 and %d.\n", choice, n-1)
			continue
		}
		return choice, nil
	}
}
