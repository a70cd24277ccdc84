package models

import (
	"sort"
)

// minSplitGain is the smallest reduction in squared error that justifies a split
const minSplitGain = 1e-12

// treeNode is a node of a CART regression tree. Leaves carry the mean target of their rows.
type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (t *treeNode) predict(row []float64) float64 {
	node := t
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

func (t *treeNode) depth() int {
	if t == nil || t.leaf {
		return 0
	}
	return 1 + max(t.left.depth(), t.right.depth())
}

// treeBuilder grows a regression tree on column major features. Split gains are accumulated per
// feature into importance.
type treeBuilder struct {
	cols       [][]float64
	target     []float64
	maxDepth   int
	minLeaf    int
	importance []float64
}

func (b *treeBuilder) build(rows []int, depth int) *treeNode {
	sum := 0.0
	for _, r := range rows {
		sum += b.target[r]
	}
	node := &treeNode{leaf: true, value: sum / float64(len(rows))}
	if depth >= b.maxDepth || len(rows) < 2*b.minLeaf {
		return node
	}

	feature, threshold, gain, ok := b.bestSplit(rows, sum)
	if !ok {
		return node
	}

	var left, right []int
	for _, r := range rows {
		if b.cols[feature][r] <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	b.importance[feature] += gain
	node.leaf = false
	node.feature = feature
	node.threshold = threshold
	node.left = b.build(left, depth+1)
	node.right = b.build(right, depth+1)
	return node
}

// bestSplit scans every feature for the threshold maximizing the reduction in squared error
// while keeping at least minLeaf rows on each side.
func (b *treeBuilder) bestSplit(rows []int, sum float64) (int, float64, float64, bool) {
	n := float64(len(rows))
	parent := sum * sum / n

	bestFeature, bestThreshold, bestGain := -1, 0.0, minSplitGain
	sorted := make([]int, len(rows))
	for j, col := range b.cols {
		copy(sorted, rows)
		sort.SliceStable(sorted, func(a, c int) bool {
			return col[sorted[a]] < col[sorted[c]]
		})

		leftSum := 0.0
		for i := 0; i < len(sorted)-1; i++ {
			leftSum += b.target[sorted[i]]
			nLeft := i + 1
			nRight := len(sorted) - nLeft
			if col[sorted[i]] == col[sorted[i+1]] {
				continue
			}
			if nLeft < b.minLeaf || nRight < b.minLeaf {
				continue
			}
			rightSum := sum - leftSum
			gain := leftSum*leftSum/float64(nLeft) + rightSum*rightSum/float64(nRight) - parent
			if gain > bestGain {
				bestFeature = j
				bestThreshold = (col[sorted[i]] + col[sorted[i+1]]) / 2
				bestGain = gain
			}
		}
	}
	if bestFeature < 0 {
		return 0, 0, 0, false
	}
	return bestFeature, bestThreshold, bestGain, true
}
