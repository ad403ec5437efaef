package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	ml "github.com/FarmSight/FarmSight-Go/pipelines/ML"
	preprocess "github.com/FarmSight/FarmSight-Go/pipelines/Preprocess"
)

// Artifact file names inside the store directory
const (
	CropModelFile       = "model_crop_type.json"
	FertilizerModelFile = "model_fertilizer_name.json"
	ImputerFile         = "imputer.json"
	ScalerFile          = "scaler.json"
	EncoderFile         = "encoder.json"
	ColumnsFile         = "columns.json"
)

// ColumnLists records the column roles the pipeline was fitted with
type ColumnLists struct {
	Input       []string `json:"input_columns"`
	Numeric     []string `json:"numeric_columns"`
	Categorical []string `json:"categorical_columns"`
}

// Bundle is the complete set of fitted artifacts one training run
// produces: both classifiers plus the preprocessing pipeline they
// expect their inputs to pass through.
type Bundle struct {
	CropModel       *ml.DecisionTreeClassifier
	FertilizerModel *ml.DecisionTreeClassifier
	Pipeline        *preprocess.Pipeline
}

// ArtifactStore persists and reloads a Bundle as JSON files in a
// directory. Each fitted component lands in its own file so artifacts
// stay inspectable and individually diffable.
type ArtifactStore struct {
	Dir string
}

// NewArtifactStore creates a store rooted at dir
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{Dir: dir}
}

func (s *ArtifactStore) path(name string) string {
	return filepath.Join(s.Dir, name)
}

func (s *ArtifactStore) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := os.WriteFile(s.path(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (s *ArtifactStore) readJSON(name string, v any) error {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}
	return nil
}

// SaveAll writes every artifact in the bundle, creating the store
// directory if needed.
func (s *ArtifactStore) SaveAll(b *Bundle) error {
	if b == nil || b.CropModel == nil || b.FertilizerModel == nil || b.Pipeline == nil {
		return fmt.Errorf("bundle must contain both models and a fitted pipeline")
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create artifacts directory %s: %w", s.Dir, err)
	}

	if err := b.CropModel.Save(s.path(CropModelFile)); err != nil {
		return err
	}
	if err := b.FertilizerModel.Save(s.path(FertilizerModelFile)); err != nil {
		return err
	}
	if err := s.writeJSON(ImputerFile, b.Pipeline.Imputer); err != nil {
		return err
	}
	if err := s.writeJSON(ScalerFile, b.Pipeline.Scaler); err != nil {
		return err
	}
	if err := s.writeJSON(EncoderFile, b.Pipeline.Encoder); err != nil {
		return err
	}
	columns := ColumnLists{
		Input:       b.Pipeline.InputColumns,
		Numeric:     b.Pipeline.NumericColumns,
		Categorical: b.Pipeline.CategoricalColumns,
	}
	return s.writeJSON(ColumnsFile, columns)
}

// LoadAll reloads a previously saved bundle, reassembling the pipeline
// through Restore so column metadata mismatches surface immediately.
func (s *ArtifactStore) LoadAll() (*Bundle, error) {
	cropModel := &ml.DecisionTreeClassifier{}
	if err := cropModel.Load(s.path(CropModelFile)); err != nil {
		return nil, err
	}
	fertilizerModel := &ml.DecisionTreeClassifier{}
	if err := fertilizerModel.Load(s.path(FertilizerModelFile)); err != nil {
		return nil, err
	}

	var imputer preprocess.MeanImputer
	if err := s.readJSON(ImputerFile, &imputer); err != nil {
		return nil, err
	}
	var scaler preprocess.MinMaxScaler
	if err := s.readJSON(ScalerFile, &scaler); err != nil {
		return nil, err
	}
	var encoder preprocess.OneHotEncoder
	if err := s.readJSON(EncoderFile, &encoder); err != nil {
		return nil, err
	}
	var columns ColumnLists
	if err := s.readJSON(ColumnsFile, &columns); err != nil {
		return nil, err
	}

	pipeline, err := preprocess.Restore(columns.Input, columns.Numeric, columns.Categorical, &imputer, &scaler, &encoder)
	if err != nil {
		return nil, fmt.Errorf("failed to restore pipeline from artifacts: %w", err)
	}

	return &Bundle{
		CropModel:       cropModel,
		FertilizerModel: fertilizerModel,
		Pipeline:        pipeline,
	}, nil
}
