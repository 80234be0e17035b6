package classifier

import (
	"slices"
)

// node is one tree vertex. Leaves have feature -1.
type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

type tree struct {
	nodes []node
}

func (t *tree) predict(row []float64) float64 {
	i := 0
	for {
		n := &t.nodes[i]
		if n.feature < 0 {
			return n.value
		}
		if row[n.feature] < n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// grower builds one tree from gradient statistics.
type grower struct {
	rows     [][]float64
	grad     []float64
	hess     []float64
	features []int
	cfg      Config
	gain     []float64 // accumulated split gain per column
	tree     tree
}

func (g *grower) leafWeight(gs, hs float64) float64 {
	return -gs / (hs + g.cfg.Lambda) * g.cfg.LearningRate
}

func (g *grower) score(gs, hs float64) float64 {
	return gs * gs / (hs + g.cfg.Lambda)
}

// grow appends the subtree over idx and returns its node index.
func (g *grower) grow(idx []int, depth int) int {
	var gs, hs float64
	for _, i := range idx {
		gs += g.grad[i]
		hs += g.hess[i]
	}

	self := len(g.tree.nodes)
	g.tree.nodes = append(g.tree.nodes, node{feature: -1, value: g.leafWeight(gs, hs)})
	if depth >= g.cfg.MaxDepth || len(idx) < 2 {
		return self
	}

	best := struct {
		gain      float64
		feature   int
		threshold float64
	}{feature: -1}
	parent := g.score(gs, hs)

	sorted := make([]int, len(idx))
	for _, f := range g.features {
		copy(sorted, idx)
		slices.SortStableFunc(sorted, func(a, b int) int {
			va, vb := g.rows[a][f], g.rows[b][f]
			switch {
			case va < vb:
				return -1
			case va > vb:
				return 1
			}
			return 0
		})

		var gl, hl float64
		for k := 0; k < len(sorted)-1; k++ {
			gl += g.grad[sorted[k]]
			hl += g.hess[sorted[k]]

			lo, hi := g.rows[sorted[k]][f], g.rows[sorted[k+1]][f]
			if lo == hi {
				continue
			}
			gr, hr := gs-gl, hs-hl
			if hl < g.cfg.MinChildWeight || hr < g.cfg.MinChildWeight {
				continue
			}

			gain := 0.5*(g.score(gl, hl)+g.score(gr, hr)-parent) - g.cfg.MinSplitGain
			if gain > best.gain {
				best.gain = gain
				best.feature = f
				best.threshold = lo + (hi-lo)/2
				if best.threshold <= lo {
					best.threshold = hi
				}
			}
		}
	}

	if best.feature < 0 {
		return self
	}

	var left, right []int
	for _, i := range idx {
		if g.rows[i][best.feature] < best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	g.gain[best.feature] += best.gain
	l := g.grow(left, depth+1)
	r := g.grow(right, depth+1)
	g.tree.nodes[self] = node{feature: best.feature, threshold: best.threshold, left: l, right: r}
	return self
}
