package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	dataset "github.com/FarmSight/FarmSight-Go/pipelines/Dataset"
	ml "github.com/FarmSight/FarmSight-Go/pipelines/ML"
	preprocess "github.com/FarmSight/FarmSight-Go/pipelines/Preprocess"
	recommend "github.com/FarmSight/FarmSight-Go/pipelines/Recommend"
	storage "github.com/FarmSight/FarmSight-Go/pipelines/Storage"
	"github.com/FarmSight/FarmSight-Go/utils"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		utils.GetLogger().Error("run failed", err, nil)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := utils.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := utils.GetLogger()
	logger.SetLevel(utils.ParseLogLevel(cfg.Logging.Level))
	logger.SetFormat(cfg.Logging.Format)
	logger = logger.WithComponent("farmsight")

	startedAt := time.Now().UTC()

	// Dataset loading and column typing
	table, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	logger.Info("dataset loaded", map[string]any{
		"path":    cfg.Dataset.Path,
		"rows":    table.NumRows(),
		"columns": table.NumColumns(),
	})

	inputColumns, err := table.InputColumns(cfg.Dataset.TargetColumns)
	if err != nil {
		return err
	}
	numericColumns, categoricalColumns := table.SplitColumnTypes(inputColumns)
	logger.Debug("column roles resolved", map[string]any{
		"numeric":     numericColumns,
		"categorical": categoricalColumns,
	})

	// Two-stage split: test first, then validation from the remainder
	splitter := dataset.NewSplitter(cfg.Dataset.RandomSeed)
	train, val, test, err := splitter.TrainValTest(table, cfg.Dataset.TestFraction, cfg.Dataset.ValidationFraction)
	if err != nil {
		return err
	}
	logger.Info("dataset partitioned", map[string]any{
		"train": train.NumRows(),
		"val":   val.NumRows(),
		"test":  test.NumRows(),
	})

	// Preprocessing is fitted on the training partition only
	pipeline, err := preprocess.Fit(train, inputColumns, numericColumns, categoricalColumns)
	if err != nil {
		return err
	}
	featureNames := pipeline.FeatureNames()

	trainX, err := pipeline.Transform(train)
	if err != nil {
		return fmt.Errorf("failed to transform training partition: %w", err)
	}
	valX, err := pipeline.Transform(val)
	if err != nil {
		return fmt.Errorf("failed to transform validation partition: %w", err)
	}
	testX, err := pipeline.Transform(test)
	if err != nil {
		return fmt.Errorf("failed to transform test partition: %w", err)
	}

	// One classifier per target column
	trainer := ml.NewTrainer(&ml.TrainingConfig{
		MaxDepth:        cfg.Model.MaxDepth,
		MinSamplesSplit: cfg.Model.MinSamplesSplit,
		MinSamplesLeaf:  cfg.Model.MinSamplesLeaf,
	})

	models := make([]*ml.TrainedModel, 0, len(cfg.Dataset.TargetColumns))
	for _, target := range cfg.Dataset.TargetColumns {
		trainY, err := train.Column(target)
		if err != nil {
			return err
		}
		valY, err := val.Column(target)
		if err != nil {
			return err
		}
		testY, err := test.Column(target)
		if err != nil {
			return err
		}

		model, err := trainer.Train(target, ml.SplitSet{
			TrainX: trainX, TrainY: trainY,
			ValX: valX, ValY: valY,
			TestX: testX, TestY: testY,
		}, featureNames)
		if err != nil {
			return err
		}
		models = append(models, model)

		fmt.Printf("\n%s model\n", target)
		fmt.Printf("  Train accuracy:      %.4f\n", model.TrainAccuracy)
		fmt.Printf("  Validation accuracy: %.4f\n", model.ValidationAccuracy)
		fmt.Printf("  Test accuracy:       %.4f\n", model.TestAccuracy)
		fmt.Println()
		fmt.Print(ml.FormatImportance(
			fmt.Sprintf("Top features for %s", target),
			ml.RankImportance(model.FeatureImportance), 10,
		))
	}

	if len(models) != 2 {
		return fmt.Errorf("expected exactly 2 target columns (crop and fertilizer), got %d", len(models))
	}
	cropModel, fertilizerModel := models[0], models[1]

	// Interactive recommendation over live weather context
	weatherClient := recommend.NewWeatherAPIClient(
		cfg.Weather.APIKey,
		cfg.Weather.BaseURL,
		time.Duration(cfg.Weather.TimeoutSeconds)*time.Second,
		cfg.Weather.MaxRetries,
	)
	recommender := &recommend.Recommender{
		Pipeline:        pipeline,
		CropModel:       cropModel.Model,
		FertilizerModel: fertilizerModel.Model,
		Weather:         weatherClient,
		Location:        cfg.Weather.Location,
		In:              os.Stdin,
		Out:             os.Stdout,
	}
	if _, err := recommender.Run(context.Background()); err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}

	// Persistence happens after the recommendation is printed; failures
	// here are logged but do not undo the run.
	store := storage.NewArtifactStore(cfg.Artifacts.Dir)
	if err := store.SaveAll(&storage.Bundle{
		CropModel:       cropModel.Model,
		FertilizerModel: fertilizerModel.Model,
		Pipeline:        pipeline,
	}); err != nil {
		logger.Error("failed to save artifacts", err, map[string]any{"dir": cfg.Artifacts.Dir})
	} else {
		logger.Info("artifacts saved", map[string]any{"dir": cfg.Artifacts.Dir})
	}

	if cfg.Artifacts.RecordHistory {
		if err := recordRun(cfg, startedAt, train.NumRows(), val.NumRows(), test.NumRows(), cropModel, fertilizerModel); err != nil {
			logger.Error("failed to record run history", err, map[string]any{"db": cfg.Artifacts.RunHistoryDB})
		}
	}

	return nil
}

func recordRun(cfg *utils.Config, startedAt time.Time, trainRows, valRows, testRows int, crop, fertilizer *ml.TrainedModel) error {
	history, err := storage.OpenRunHistory(cfg.Artifacts.RunHistoryDB)
	if err != nil {
		return err
	}
	defer history.Close()

	id, err := history.Record(storage.RunRecord{
		StartedAt:          startedAt,
		DatasetPath:        cfg.Dataset.Path,
		TrainRows:          trainRows,
		ValidationRows:     valRows,
		TestRows:           testRows,
		CropAccuracy:       crop.TestAccuracy,
		FertilizerAccuracy: fertilizer.TestAccuracy,
		ArtifactsDir:       cfg.Artifacts.Dir,
	})
	if err != nil {
		return err
	}
	utils.GetLogger().WithComponent("farmsight").Info("run recorded", map[string]any{"run_id": id})
	return nil
}
