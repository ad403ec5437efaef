package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// DecisionTreeNode represents a node in the decision tree
type DecisionTreeNode struct {
	IsLeaf       bool              `json:"is_leaf"`
	Class        string            `json:"class,omitempty"`        // majority class at this node
	ClassCounts  map[string]int    `json:"class_counts,omitempty"` // label distribution at this node
	Confidence   float64           `json:"confidence"`             // majority fraction
	Feature      string            `json:"feature,omitempty"`      // feature to split on
	FeatureIndex int               `json:"feature_index,omitempty"`
	Threshold    float64           `json:"threshold,omitempty"` // split threshold (<= goes left)
	Left         *DecisionTreeNode `json:"left,omitempty"`
	Right        *DecisionTreeNode `json:"right,omitempty"`
	SamplesCount int               `json:"samples_count"`
	Depth        int               `json:"depth"`
}

// DecisionTreeClassifier implements a CART-style classification tree
// with gini impurity splits. MaxDepth of 0 means unlimited depth, so a
// fully grown tree is the default.
type DecisionTreeClassifier struct {
	Root            *DecisionTreeNode `json:"root"`
	MaxDepth        int               `json:"max_depth"`
	MinSamplesSplit int               `json:"min_samples_split"`
	MinSamplesLeaf  int               `json:"min_samples_leaf"`
	FeatureNames    []string          `json:"feature_names"`
	Classes         []string          `json:"classes"`
	NumFeatures     int               `json:"num_features"`
}

// NewDecisionTreeClassifier creates a classifier with the given
// hyperparameters; non-positive minimums fall back to defaults.
func NewDecisionTreeClassifier(maxDepth, minSamplesSplit, minSamplesLeaf int) *DecisionTreeClassifier {
	if maxDepth < 0 {
		maxDepth = 0
	}
	if minSamplesSplit <= 0 {
		minSamplesSplit = 2
	}
	if minSamplesLeaf <= 0 {
		minSamplesLeaf = 1
	}
	return &DecisionTreeClassifier{
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		MinSamplesLeaf:  minSamplesLeaf,
	}
}

// Train builds the decision tree from training data.
// X: feature matrix (rows = samples, cols = features)
// y: target labels (one per sample)
func (dt *DecisionTreeClassifier) Train(X [][]float64, y []string, featureNames []string) error {
	if len(X) == 0 {
		return fmt.Errorf("empty training data")
	}
	if len(X) != len(y) {
		return fmt.Errorf("X and y must have same number of samples: %d vs %d", len(X), len(y))
	}
	if len(featureNames) != len(X[0]) {
		return fmt.Errorf("feature names must match number of features: %d vs %d", len(featureNames), len(X[0]))
	}

	dt.FeatureNames = featureNames
	dt.NumFeatures = len(X[0])
	dt.Classes = uniqueStrings(y)

	indices := make([]int, len(X))
	for i := range indices {
		indices[i] = i
	}
	dt.Root = dt.buildTree(X, y, indices, 0)
	return nil
}

// buildTree recursively builds the decision tree
func (dt *DecisionTreeClassifier) buildTree(X [][]float64, y []string, indices []int, depth int) *DecisionTreeNode {
	node := &DecisionTreeNode{
		SamplesCount: len(indices),
		Depth:        depth,
	}

	currentLabels := make([]string, len(indices))
	for i, idx := range indices {
		currentLabels[i] = y[idx]
	}

	classCounts := countClasses(currentLabels)
	node.ClassCounts = classCounts

	majorityClass, majorityCount := majorityClass(classCounts)
	node.Class = majorityClass
	node.Confidence = float64(majorityCount) / float64(len(indices))

	// Stopping criteria
	if (dt.MaxDepth > 0 && depth >= dt.MaxDepth) || len(indices) < dt.MinSamplesSplit || len(classCounts) == 1 {
		node.IsLeaf = true
		return node
	}

	bestFeature, bestThreshold, bestGain := dt.findBestSplit(X, y, indices)
	if bestGain <= 0 {
		node.IsLeaf = true
		return node
	}

	leftIndices, rightIndices := dt.partition(X, indices, bestFeature, bestThreshold)
	if len(leftIndices) < dt.MinSamplesLeaf || len(rightIndices) < dt.MinSamplesLeaf {
		node.IsLeaf = true
		return node
	}

	node.IsLeaf = false
	node.Feature = dt.FeatureNames[bestFeature]
	node.FeatureIndex = bestFeature
	node.Threshold = bestThreshold
	node.Left = dt.buildTree(X, y, leftIndices, depth+1)
	node.Right = dt.buildTree(X, y, rightIndices, depth+1)
	return node
}

// findBestSplit finds the feature and threshold with the highest gini
// gain. Features and thresholds are scanned in fixed order, so ties
// resolve the same way on every run.
func (dt *DecisionTreeClassifier) findBestSplit(X [][]float64, y []string, indices []int) (int, float64, float64) {
	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	currentLabels := make([]string, len(indices))
	for i, idx := range indices {
		currentLabels[i] = y[idx]
	}
	parentGini := giniImpurity(currentLabels)

	for feature := 0; feature < dt.NumFeatures; feature++ {
		values := make([]float64, len(indices))
		for i, idx := range indices {
			values[i] = X[idx][feature]
		}

		for _, threshold := range candidateThresholds(values) {
			leftIndices, rightIndices := dt.partition(X, indices, feature, threshold)
			if len(leftIndices) == 0 || len(rightIndices) == 0 {
				continue
			}

			leftLabels := make([]string, len(leftIndices))
			for i, idx := range leftIndices {
				leftLabels[i] = y[idx]
			}
			rightLabels := make([]string, len(rightIndices))
			for i, idx := range rightIndices {
				rightLabels[i] = y[idx]
			}

			n := float64(len(indices))
			nLeft := float64(len(leftIndices))
			nRight := float64(len(rightIndices))

			weightedGini := (nLeft/n)*giniImpurity(leftLabels) + (nRight/n)*giniImpurity(rightLabels)
			gain := parentGini - weightedGini

			if gain > bestGain {
				bestGain = gain
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestGain
}

// partition splits indices on a feature threshold (<= goes left)
func (dt *DecisionTreeClassifier) partition(X [][]float64, indices []int, feature int, threshold float64) ([]int, []int) {
	var leftIndices, rightIndices []int
	for _, idx := range indices {
		if X[idx][feature] <= threshold {
			leftIndices = append(leftIndices, idx)
		} else {
			rightIndices = append(rightIndices, idx)
		}
	}
	return leftIndices, rightIndices
}

// Predict predicts the class for a single sample, returning the label
// and the leaf's majority fraction as a confidence score.
func (dt *DecisionTreeClassifier) Predict(x []float64) (string, float64, error) {
	if dt.Root == nil {
		return "", 0, fmt.Errorf("model not trained")
	}
	if len(x) != dt.NumFeatures {
		return "", 0, fmt.Errorf("expected %d features, got %d", dt.NumFeatures, len(x))
	}
	leaf := dt.traverseToLeaf(dt.Root, x)
	return leaf.Class, leaf.Confidence, nil
}

// PredictProba predicts class probabilities for a single sample
func (dt *DecisionTreeClassifier) PredictProba(x []float64) (map[string]float64, error) {
	if dt.Root == nil {
		return nil, fmt.Errorf("model not trained")
	}
	if len(x) != dt.NumFeatures {
		return nil, fmt.Errorf("expected %d features, got %d", dt.NumFeatures, len(x))
	}

	leaf := dt.traverseToLeaf(dt.Root, x)
	total := 0
	for _, count := range leaf.ClassCounts {
		total += count
	}
	proba := make(map[string]float64, len(leaf.ClassCounts))
	for class, count := range leaf.ClassCounts {
		proba[class] = float64(count) / float64(total)
	}
	return proba, nil
}

func (dt *DecisionTreeClassifier) traverseToLeaf(node *DecisionTreeNode, x []float64) *DecisionTreeNode {
	if node.IsLeaf {
		return node
	}
	if x[node.FeatureIndex] <= node.Threshold {
		return dt.traverseToLeaf(node.Left, x)
	}
	return dt.traverseToLeaf(node.Right, x)
}

// Save writes the model to a JSON file
func (dt *DecisionTreeClassifier) Save(path string) error {
	data, err := json.MarshalIndent(dt, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// Load reads a model from a JSON file
func (dt *DecisionTreeClassifier) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model file: %w", err)
	}
	if err := json.Unmarshal(data, dt); err != nil {
		return fmt.Errorf("failed to unmarshal model: %w", err)
	}
	return nil
}

// FeatureImportance calculates per-feature importance from how much
// training data each feature's splits touched, normalized to sum 1.
func (dt *DecisionTreeClassifier) FeatureImportance() map[string]float64 {
	importance := make(map[string]float64, len(dt.FeatureNames))
	for _, name := range dt.FeatureNames {
		importance[name] = 0
	}
	if dt.Root != nil {
		accumulateImportance(dt.Root, importance)
	}

	total := 0.0
	for _, val := range importance {
		total += val
	}
	if total > 0 {
		for name := range importance {
			importance[name] /= total
		}
	}
	return importance
}

func accumulateImportance(node *DecisionTreeNode, importance map[string]float64) {
	if node.IsLeaf {
		return
	}
	importance[node.Feature] += float64(node.SamplesCount)
	if node.Left != nil {
		accumulateImportance(node.Left, importance)
	}
	if node.Right != nil {
		accumulateImportance(node.Right, importance)
	}
}

// Depth returns the maximum depth of the tree
func (dt *DecisionTreeClassifier) Depth() int {
	if dt.Root == nil {
		return 0
	}
	return nodeDepth(dt.Root)
}

func nodeDepth(node *DecisionTreeNode) int {
	if node.IsLeaf {
		return node.Depth
	}
	leftDepth := nodeDepth(node.Left)
	rightDepth := nodeDepth(node.Right)
	if leftDepth > rightDepth {
		return leftDepth
	}
	return rightDepth
}

// NumNodes returns the total number of nodes in the tree
func (dt *DecisionTreeClassifier) NumNodes() int {
	return countNodes(dt.Root)
}

func countNodes(node *DecisionTreeNode) int {
	if node == nil {
		return 0
	}
	return 1 + countNodes(node.Left) + countNodes(node.Right)
}

// Validate checks if the model is ready for predictions
func (dt *DecisionTreeClassifier) Validate() error {
	if dt.Root == nil {
		return fmt.Errorf("model has no root node")
	}
	if len(dt.FeatureNames) == 0 {
		return fmt.Errorf("model has no feature names")
	}
	if len(dt.Classes) == 0 {
		return fmt.Errorf("model has no classes")
	}
	if dt.NumFeatures != len(dt.FeatureNames) {
		return fmt.Errorf("num_features mismatch: %d vs %d names", dt.NumFeatures, len(dt.FeatureNames))
	}
	return nil
}

// Helper functions

func giniImpurity(labels []string) float64 {
	if len(labels) == 0 {
		return 0
	}
	counts := countClasses(labels)
	n := float64(len(labels))
	gini := 1.0
	for _, count := range counts {
		p := float64(count) / n
		gini -= p * p
	}
	return gini
}

func countClasses(labels []string) map[string]int {
	counts := make(map[string]int)
	for _, label := range labels {
		counts[label]++
	}
	return counts
}

// majorityClass picks the most frequent class; ties break on the
// lexically smallest label so training is reproducible.
func majorityClass(classCounts map[string]int) (string, int) {
	classes := make([]string, 0, len(classCounts))
	for class := range classCounts {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	maxClass := ""
	maxCount := 0
	for _, class := range classes {
		if classCounts[class] > maxCount {
			maxClass = class
			maxCount = classCounts[class]
		}
	}
	return maxClass, maxCount
}

func uniqueStrings(strs []string) []string {
	seen := make(map[string]bool)
	unique := []string{}
	for _, s := range strs {
		if !seen[s] {
			seen[s] = true
			unique = append(unique, s)
		}
	}
	sort.Strings(unique)
	return unique
}

// candidateThresholds returns midpoints between consecutive unique
// values of a feature
func candidateThresholds(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	uniqueVals := make([]float64, 0, len(values))
	seen := make(map[float64]bool)
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			uniqueVals = append(uniqueVals, v)
		}
	}
	if len(uniqueVals) == 1 {
		return nil
	}
	sort.Float64s(uniqueVals)

	thresholds := make([]float64, len(uniqueVals)-1)
	for i := 0; i < len(uniqueVals)-1; i++ {
		thresholds[i] = (uniqueVals[i] + uniqueVals[i+1]) / 2
	}
	return thresholds
}
