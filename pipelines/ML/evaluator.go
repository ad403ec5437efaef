package ml

import (
	"fmt"
	"sort"
)

// EvaluationMetrics holds classification metrics for one data split
type EvaluationMetrics struct {
	Accuracy           float64                   `json:"accuracy"`
	Precision          map[string]float64        `json:"precision"` // per-class
	Recall             map[string]float64        `json:"recall"`    // per-class
	F1Score            map[string]float64        `json:"f1_score"`  // per-class
	MacroPrecision     float64                   `json:"macro_precision"`
	MacroRecall        float64                   `json:"macro_recall"`
	MacroF1            float64                   `json:"macro_f1"`
	ConfusionMatrix    map[string]map[string]int `json:"confusion_matrix"` // actual -> predicted -> count
	Support            map[string]int            `json:"support"`
	TotalSamples       int                       `json:"total_samples"`
	CorrectPredictions int                       `json:"correct_predictions"`
}

// Evaluate runs the classifier over a split and computes its metrics
func Evaluate(classifier *DecisionTreeClassifier, X [][]float64, yTrue []string) (*EvaluationMetrics, error) {
	if len(X) == 0 || len(yTrue) == 0 {
		return nil, fmt.Errorf("empty evaluation data")
	}
	if len(X) != len(yTrue) {
		return nil, fmt.Errorf("X and yTrue must have same length: %d vs %d", len(X), len(yTrue))
	}

	yPred := make([]string, len(X))
	for i, x := range X {
		pred, _, err := classifier.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("prediction failed at index %d: %w", i, err)
		}
		yPred[i] = pred
	}
	return CalculateMetrics(yTrue, yPred, classifier.Classes)
}

// Accuracy returns the exact-match prediction rate on a split
func Accuracy(classifier *DecisionTreeClassifier, X [][]float64, yTrue []string) (float64, error) {
	metrics, err := Evaluate(classifier, X, yTrue)
	if err != nil {
		return 0, err
	}
	return metrics.Accuracy, nil
}

// CalculateMetrics computes all classification metrics from label pairs
func CalculateMetrics(yTrue, yPred []string, classes []string) (*EvaluationMetrics, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("yTrue and yPred must have same length: %d vs %d", len(yTrue), len(yPred))
	}

	metrics := &EvaluationMetrics{
		Precision:       make(map[string]float64),
		Recall:          make(map[string]float64),
		F1Score:         make(map[string]float64),
		Support:         make(map[string]int),
		ConfusionMatrix: make(map[string]map[string]int),
		TotalSamples:    len(yTrue),
	}

	for _, actual := range classes {
		metrics.ConfusionMatrix[actual] = make(map[string]int)
	}

	for i := range yTrue {
		actual := yTrue[i]
		predicted := yPred[i]
		if metrics.ConfusionMatrix[actual] == nil {
			metrics.ConfusionMatrix[actual] = make(map[string]int)
		}
		metrics.ConfusionMatrix[actual][predicted]++
		metrics.Support[actual]++
		if actual == predicted {
			metrics.CorrectPredictions++
		}
	}

	metrics.Accuracy = float64(metrics.CorrectPredictions) / float64(metrics.TotalSamples)

	for _, class := range classes {
		tp := metrics.ConfusionMatrix[class][class]

		fn := 0
		for pred, count := range metrics.ConfusionMatrix[class] {
			if pred != class {
				fn += count
			}
		}
		fp := 0
		for _, actual := range classes {
			if actual != class {
				fp += metrics.ConfusionMatrix[actual][class]
			}
		}

		if tp+fp > 0 {
			metrics.Precision[class] = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			metrics.Recall[class] = float64(tp) / float64(tp+fn)
		}
		prec := metrics.Precision[class]
		rec := metrics.Recall[class]
		if prec+rec > 0 {
			metrics.F1Score[class] = 2 * (prec * rec) / (prec + rec)
		}
	}

	if len(classes) > 0 {
		sumPrecision, sumRecall, sumF1 := 0.0, 0.0, 0.0
		for _, class := range classes {
			sumPrecision += metrics.Precision[class]
			sumRecall += metrics.Recall[class]
			sumF1 += metrics.F1Score[class]
		}
		metrics.MacroPrecision = sumPrecision / float64(len(classes))
		metrics.MacroRecall = sumRecall / float64(len(classes))
		metrics.MacroF1 = sumF1 / float64(len(classes))
	}

	return metrics, nil
}

// FormatMetrics returns a human-readable summary of the metrics
func (m *EvaluationMetrics) FormatMetrics() string {
	output := fmt.Sprintf("Overall Accuracy: %.4f\n", m.Accuracy)
	output += fmt.Sprintf("Total Samples: %d\n", m.TotalSamples)
	output += fmt.Sprintf("Correct Predictions: %d\n\n", m.CorrectPredictions)

	classes := make([]string, 0, len(m.Support))
	for class := range m.Support {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	output += "Per-Class Metrics:\n"
	for _, class := range classes {
		output += fmt.Sprintf("  Class '%s' (n=%d):\n", class, m.Support[class])
		output += fmt.Sprintf("    Precision: %.4f\n", m.Precision[class])
		output += fmt.Sprintf("    Recall:    %.4f\n", m.Recall[class])
		output += fmt.Sprintf("    F1-Score:  %.4f\n", m.F1Score[class])
	}

	output += "\nMacro Averages:\n"
	output += fmt.Sprintf("  Precision: %.4f\n", m.MacroPrecision)
	output += fmt.Sprintf("  Recall:    %.4f\n", m.MacroRecall)
	output += fmt.Sprintf("  F1-Score:  %.4f\n", m.MacroF1)
	return output
}

// FormatConfusionMatrix returns a formatted confusion matrix
func (m *EvaluationMetrics) FormatConfusionMatrix() string {
	var classes []string
	for class := range m.Support {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	output := "Confusion Matrix:\n"
	output += "Actual \\ Predicted | "
	for _, class := range classes {
		output += fmt.Sprintf("%10s ", class)
	}
	output += "\n-------------------+"
	for range classes {
		output += "-----------"
	}
	output += "\n"

	for _, actual := range classes {
		output += fmt.Sprintf("%-18s | ", actual)
		for _, pred := range classes {
			output += fmt.Sprintf("%10d ", m.ConfusionMatrix[actual][pred])
		}
		output += "\n"
	}
	return output
}
