package localreg

import (
	"math"
	"sort"
)

// NodeData describes a single node in a Tree.
type NodeData struct {
	IdxStart, IdxEnd int
	IsLeaf           bool
}

// Tree is a KD-tree over a Table, used both as the query tree and the
// reference tree of the dual-tree engine. Points are referenced by an index
// permutation array rather than copied.
//
// The tree is stored as a complete binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
//   - node bounds are stored as min/max per dimension per node
//
// Every node owns exactly one Statistic: the cached moment sufficient
// statistics over the node's points plus the node's postponed and summary
// accumulators. Statistics are built bottom-up at construction time, leaves
// from raw points and internal nodes by combining their children.
type Tree struct {
	table    *Table
	leafSize int
	idxArray []int // permutation: tree-order position → original index
	invIdx   []int // inverse permutation: original index → tree-order position
	nodes    []NodeData
	// nodeBoundsMin[node*dims + j] = min value of feature j in node
	nodeBoundsMin []float64
	// nodeBoundsMax[node*dims + j] = max value of feature j in node
	nodeBoundsMax []float64
	stats         []Statistic
	numNodes      int
}

// NewTree builds a KD-tree over the given table. leafSize controls the max
// points per leaf node.
func NewTree(table *Table, leafSize int) *Tree {
	if leafSize < 1 {
		leafSize = 1
	}
	n := table.NumPoints()
	dims := table.NumFeatures()

	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	maxNodes := treeMaxNodes(n, leafSize)

	t := &Tree{
		table:         table,
		leafSize:      leafSize,
		idxArray:      idxArray,
		invIdx:        make([]int, n),
		nodes:         make([]NodeData, maxNodes),
		nodeBoundsMin: make([]float64, maxNodes*dims),
		nodeBoundsMax: make([]float64, maxNodes*dims),
	}

	if n > 0 {
		t.buildNode(0, 0, n)
		t.numNodes = treeCountNodes(t.nodes, 0, len(t.nodes))
		for pos, idx := range t.idxArray {
			t.invIdx[idx] = pos
		}
		t.stats = make([]Statistic, len(t.nodes))
		t.buildStatistics(0)
	}

	return t
}

// treeMaxNodes returns an upper bound on the number of nodes needed for a
// binary tree with n points and the given leaf size.
func treeMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	v := 1
	for v < leaves {
		v *= 2
		depth++
	}
	return (1 << (depth + 1)) - 1 + 2 // +2 for safety margin
}

// treeCountNodes counts how many nodes were actually initialized by the build.
func treeCountNodes(nodes []NodeData, nodeID, maxNodes int) int {
	if nodeID >= maxNodes {
		return 0
	}
	if nodes[nodeID].IdxStart == 0 && nodes[nodeID].IdxEnd == 0 && nodeID != 0 {
		return 0
	}
	count := 1
	if !nodes[nodeID].IsLeaf {
		count += treeCountNodes(nodes, 2*nodeID+1, maxNodes)
		count += treeCountNodes(nodes, 2*nodeID+2, maxNodes)
	}
	return count
}

// buildNode recursively builds the tree for points in idxArray[start:end].
func (t *Tree) buildNode(nodeID, start, end int) {
	dims := t.table.NumFeatures()

	// Grow arrays if needed (shouldn't happen with a good upper bound).
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, NodeData{})
		t.nodeBoundsMin = append(t.nodeBoundsMin, make([]float64, dims)...)
		t.nodeBoundsMax = append(t.nodeBoundsMax, make([]float64, dims)...)
	}

	t.computeNodeBounds(nodeID, start, end)

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, IsLeaf: true}
		return
	}

	// Find dimension with greatest spread.
	splitDim := 0
	maxSpread := -1.0
	for d := 0; d < dims; d++ {
		spread := t.nodeBoundsMax[nodeID*dims+d] - t.nodeBoundsMin[nodeID*dims+d]
		if spread > maxSpread {
			maxSpread = spread
			splitDim = d
		}
	}

	// Sort by the split dimension and split at the median.
	t.sortByDimension(start, end, splitDim)
	mid := start + count/2

	t.nodes[nodeID] = NodeData{IdxStart: start, IdxEnd: end, IsLeaf: false}

	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

// computeNodeBounds computes min/max per dimension for points idxArray[start:end].
func (t *Tree) computeNodeBounds(nodeID, start, end int) {
	dims := t.table.NumFeatures()
	base := nodeID * dims
	for d := 0; d < dims; d++ {
		t.nodeBoundsMin[base+d] = math.Inf(1)
		t.nodeBoundsMax[base+d] = math.Inf(-1)
	}
	for i := start; i < end; i++ {
		pt := t.table.Point(t.idxArray[i])
		for d := 0; d < dims; d++ {
			if pt[d] < t.nodeBoundsMin[base+d] {
				t.nodeBoundsMin[base+d] = pt[d]
			}
			if pt[d] > t.nodeBoundsMax[base+d] {
				t.nodeBoundsMax[base+d] = pt[d]
			}
		}
	}
}

// sortByDimension sorts idxArray[start:end] by the given dimension.
func (t *Tree) sortByDimension(start, end, dim int) {
	sub := t.idxArray[start:end]
	table := t.table
	sort.Slice(sub, func(i, j int) bool {
		return table.Point(sub[i])[dim] < table.Point(sub[j])[dim]
	})
}

// buildStatistics fills in node statistics bottom-up: leaves scan their raw
// points, internal nodes combine their children's already-built statistics.
func (t *Tree) buildStatistics(nodeID int) {
	if t.nodes[nodeID].IsLeaf {
		t.stats[nodeID].InitFromPoints(t, nodeID)
		return
	}
	left, right := 2*nodeID+1, 2*nodeID+2
	t.buildStatistics(left)
	t.buildStatistics(right)
	t.stats[nodeID].InitFromChildren(t.table.NumFeatures(), &t.stats[left], &t.stats[right])
}

// Table returns the table the tree is built over.
func (t *Tree) Table() *Table { return t.table }

// Root returns the root node index.
func (t *Tree) Root() int { return 0 }

// NumNodes returns the number of initialized nodes.
func (t *Tree) NumNodes() int { return t.numNodes }

// IsLeaf reports whether the node is a leaf.
func (t *Tree) IsLeaf(node int) bool { return t.nodes[node].IsLeaf }

// Count returns the number of points owned by the node.
func (t *Tree) Count(node int) int {
	return t.nodes[node].IdxEnd - t.nodes[node].IdxStart
}

// ChildNodes returns the left and right child node indices.
// Behavior is undefined for leaf nodes.
func (t *Tree) ChildNodes(node int) (left, right int) {
	return 2*node + 1, 2*node + 2
}

// Stat returns the node's statistic.
func (t *Tree) Stat(node int) *Statistic { return &t.stats[node] }

// ResetTraversalState zeroes every node's postponed and summary accumulators
// while keeping the cached moment statistics. Called before each traversal
// so a tree can be reused across runs.
func (t *Tree) ResetTraversalState() {
	for i := range t.stats {
		t.stats[i].SetZero()
	}
}

// ContainsPoint reports whether the node owns the point with the given
// original index.
func (t *Tree) ContainsPoint(node, pointIndex int) bool {
	pos := t.invIdx[pointIndex]
	return pos >= t.nodes[node].IdxStart && pos < t.nodes[node].IdxEnd
}

// ForEachPoint calls fn for every point owned by the node, passing the point
// coordinates, its original index, and its weight.
func (t *Tree) ForEachPoint(node int, fn func(point []float64, index int, weight float64)) {
	nd := t.nodes[node]
	for i := nd.IdxStart; i < nd.IdxEnd; i++ {
		idx := t.idxArray[i]
		fn(t.table.Point(idx), idx, t.table.Weight(idx))
	}
}

// SqDistRange returns the [min, max] squared Euclidean distance between the
// bounding box of node in t and the bounding box of otherNode in other. The
// minimum is the sum of squared per-dimension gaps; the maximum is the sum of
// squared per-dimension farthest-corner separations.
func (t *Tree) SqDistRange(node int, other *Tree, otherNode int) SqRange {
	dims := t.table.NumFeatures()
	base1 := node * dims
	base2 := otherNode * dims

	var lo, hi float64
	for j := 0; j < dims; j++ {
		aMin, aMax := t.nodeBoundsMin[base1+j], t.nodeBoundsMax[base1+j]
		bMin, bMax := other.nodeBoundsMin[base2+j], other.nodeBoundsMax[base2+j]

		// Gap between boxes along dimension j (0 when they overlap).
		gap := math.Max(aMin-bMax, math.Max(bMin-aMax, 0))
		lo += gap * gap

		// Farthest separation along dimension j.
		far := math.Max(aMax-bMin, bMax-aMin)
		hi += far * far
	}
	return SqRange{Lo: lo, Hi: hi}
}
