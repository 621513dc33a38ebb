package ml

import (
	"fmt"
	"math"
	"sort"
	"strings"

	kmath "github.com/drakos74/ml-kernels/internal/math"
	"github.com/drakos74/ml-kernels/internal/model"
	"github.com/rs/zerolog/log"
)

// minGain is the information gain a split must exceed.
// Anything below is rounding noise of an uninformative split.
const minGain = 1e-12

// TreeConfig holds the growth limits of a decision tree.
type TreeConfig struct {
	// MaxDepth limits the depth of the tree, a negative value grows it without limit.
	MaxDepth int `json:"max_depth"`
	// MinSamplesSplit is the minimum node size to attempt a split.
	MinSamplesSplit int `json:"min_samples_split"`
	// MinSamplesLeaf is the minimum size of each child of a split.
	MinSamplesLeaf int `json:"min_samples_leaf"`
}

// Node is a decision tree node.
// Internal nodes hold a feature and threshold with exactly two children,
// leaves hold the predicted label.
type Node struct {
	Feature      string         `json:"feature,omitempty"`
	FeatureIndex int            `json:"feature_index"`
	Threshold    float64        `json:"threshold"`
	Left         *Node          `json:"left,omitempty"`
	Right        *Node          `json:"right,omitempty"`
	Label        string         `json:"label"`
	Samples      int            `json:"samples"`
	Counts       map[string]int `json:"counts"`
	Entropy      float64        `json:"entropy"`
	Depth        int            `json:"depth"`
}

// IsLeaf returns true if the node has no children.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Height returns the number of levels below the node.
func (n *Node) Height() int {
	if n.IsLeaf() {
		return 0
	}
	l := n.Left.Height()
	r := n.Right.Height()
	if l > r {
		return l + 1
	}
	return r + 1
}

// Leaves returns the number of leaves below and including the node.
func (n *Node) Leaves() int {
	if n.IsLeaf() {
		return 1
	}
	return n.Left.Leaves() + n.Right.Leaves()
}

// Rules lists the decision path of every leaf, left to right.
func (n *Node) Rules() []string {
	rules := make([]string, 0)
	n.rules(nil, &rules)
	return rules
}

func (n *Node) rules(path []string, rules *[]string) {
	if n.IsLeaf() {
		cond := "always"
		if len(path) > 0 {
			cond = strings.Join(path, " AND ")
		}
		*rules = append(*rules, fmt.Sprintf("%s => %s (%d)", cond, n.Label, n.Samples))
		return
	}
	left := append(append([]string{}, path...), fmt.Sprintf("%s <= %s", n.Feature, kmath.Format(n.Threshold)))
	n.Left.rules(left, rules)
	right := append(append([]string{}, path...), fmt.Sprintf("%s > %s", n.Feature, kmath.Format(n.Threshold)))
	n.Right.rules(right, rules)
}

// Entropy computes the shannon entropy in bits of the label distribution.
// The entropy of an empty set is 0.
func Entropy(labels []string) float64 {
	if len(labels) == 0 {
		return 0
	}
	n := float64(len(labels))
	h := 0.0
	for _, c := range Count(labels) {
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

// InformationGain is the entropy reduction achieved by splitting parent into left and right.
func InformationGain(parent, left, right []string) float64 {
	if len(parent) == 0 {
		return 0
	}
	n := float64(len(parent))
	return Entropy(parent) -
		(float64(len(left))/n*Entropy(left) + float64(len(right))/n*Entropy(right))
}

// Split is a candidate partition of a node.
// Left holds the indexes with feature value <= threshold, Right the rest.
type Split struct {
	Feature      string  `json:"feature"`
	FeatureIndex int     `json:"feature_index"`
	Threshold    float64 `json:"threshold"`
	Gain         float64 `json:"gain"`
	Left         []int   `json:"left"`
	Right        []int   `json:"right"`
}

// BestSplit searches the split with the highest information gain.
// Thresholds are the midpoints of consecutive distinct values of each feature.
// On equal gain the first feature and the smallest threshold win.
// It returns false if no feature has two distinct values.
func BestSplit(points []model.Point, features []string) (Split, bool) {
	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Label
	}

	var best Split
	found := false
	for f, feature := range features {
		values := make([]float64, len(points))
		for i, p := range points {
			values[i] = p.Features[f]
		}
		for _, threshold := range thresholds(values) {
			var left, right []int
			var ll, rl []string
			for i, v := range values {
				if v <= threshold {
					left = append(left, i)
					ll = append(ll, labels[i])
				} else {
					right = append(right, i)
					rl = append(rl, labels[i])
				}
			}
			gain := InformationGain(labels, ll, rl)
			if !found || gain > best.Gain {
				best = Split{
					Feature:      feature,
					FeatureIndex: f,
					Threshold:    threshold,
					Gain:         gain,
					Left:         left,
					Right:        right,
				}
				found = true
			}
		}
	}
	return best, found
}

func thresholds(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	tt := make([]float64, 0)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			tt = append(tt, (sorted[i]+sorted[i-1])/2)
		}
	}
	return tt
}

// BuildTree grows a decision tree top-down on the labeled points.
// A node becomes a leaf, in this order, if
// the max depth is reached or the node is pure,
// it has less than MinSamplesSplit points,
// the best split leaves a child with less than MinSamplesLeaf points,
// or no split improves the information gain.
// The last rule looks one split ahead only: on XOR-like data, where every single split
// leaves the label mix unchanged, the tree stops at an impure leaf and cannot reproduce
// its training labels even without depth or size limits.
// Leaves predict their majority label, ties going to the lexicographically smallest label.
func BuildTree(points []model.Point, features []string, cfg TreeConfig) (root *Node, err error) {
	defer func() {
		kmath.Observe("tree", err)
	}()
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points to build a tree from", kmath.InvalidInputErr)
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: no features", kmath.InvalidInputErr)
	}
	for i, p := range points {
		if p.Dim() != len(features) {
			return nil, fmt.Errorf("%w: point %d has %d features, expected %d", kmath.InvalidInputErr, i, p.Dim(), len(features))
		}
	}
	if cfg.MinSamplesSplit < 1 || cfg.MinSamplesLeaf < 1 {
		return nil, fmt.Errorf("%w: min samples must be positive: split=%d leaf=%d", kmath.InvalidInputErr, cfg.MinSamplesSplit, cfg.MinSamplesLeaf)
	}

	root = grow(points, features, cfg, 0)
	log.Debug().
		Int("points", len(points)).
		Int("height", root.Height()).
		Int("leaves", root.Leaves()).
		Msg("decision tree")
	return root, nil
}

func grow(points []model.Point, features []string, cfg TreeConfig, depth int) *Node {
	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Label
	}
	label, _ := Vote(labels)
	counts := Count(labels)
	node := &Node{
		FeatureIndex: -1,
		Label:        label,
		Samples:      len(points),
		Counts:       counts,
		Entropy:      Entropy(labels),
		Depth:        depth,
	}

	if (cfg.MaxDepth >= 0 && depth >= cfg.MaxDepth) || len(counts) <= 1 {
		return node
	}
	if len(points) < cfg.MinSamplesSplit {
		return node
	}
	split, ok := BestSplit(points, features)
	if !ok {
		return node
	}
	if len(split.Left) < cfg.MinSamplesLeaf || len(split.Right) < cfg.MinSamplesLeaf {
		return node
	}
	if split.Gain <= minGain {
		return node
	}

	node.Feature = split.Feature
	node.FeatureIndex = split.FeatureIndex
	node.Threshold = split.Threshold
	node.Left = grow(pick(points, split.Left), features, cfg, depth+1)
	node.Right = grow(pick(points, split.Right), features, cfg, depth+1)
	return node
}

func pick(points []model.Point, idx []int) []model.Point {
	pp := make([]model.Point, len(idx))
	for i, j := range idx {
		pp[i] = points[j]
	}
	return pp
}

// Predict walks the tree for the given point and returns the label of the leaf it reaches.
func Predict(root *Node, p model.Point) (string, error) {
	if root == nil {
		return "", fmt.Errorf("%w: no tree", kmath.InvalidInputErr)
	}
	node := root
	for !node.IsLeaf() {
		if node.FeatureIndex >= p.Dim() {
			return "", fmt.Errorf("%w: point has %d features, tree splits on '%s' at %d", kmath.InvalidInputErr, p.Dim(), node.Feature, node.FeatureIndex)
		}
		if p.Features[node.FeatureIndex] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Label, nil
}

// Accuracy returns the fraction of points whose label the tree predicts correctly.
func Accuracy(root *Node, points []model.Point) (float64, error) {
	if len(points) == 0 {
		return 0, fmt.Errorf("%w: no points to evaluate", kmath.InvalidInputErr)
	}
	correct := 0
	for _, p := range points {
		label, err := Predict(root, p)
		if err != nil {
			return 0, err
		}
		if label == p.Label {
			correct++
		}
	}
	return float64(correct) / float64(len(points)), nil
}
