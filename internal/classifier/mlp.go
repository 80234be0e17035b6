package classifier

import (
	"math"
	"math/rand"
)

const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
	probClip    = 1e-15
)

// dense is one fully connected layer. w is stored row-major by output unit.
type dense struct {
	in, out int
	w       []float64
	b       []float64
}

// network is a feed-forward net with ReLU hidden layers and one logistic output unit.
type network struct {
	layers []dense
}

// newNetwork initializes weights uniformly in ±sqrt(k/(fan_in+fan_out)), k being 6 for ReLU layers and
// 2 for the logistic output.
func newNetwork(width int, hidden []int, rng *rand.Rand) *network {
	sizes := append(append([]int{width}, hidden...), 1)
	n := &network{layers: make([]dense, len(sizes)-1)}
	for l := range n.layers {
		in, out := sizes[l], sizes[l+1]
		factor := 6.0
		if l == len(n.layers)-1 {
			factor = 2
		}
		bound := math.Sqrt(factor / float64(in+out))

		d := dense{in: in, out: out, w: make([]float64, in*out), b: make([]float64, out)}
		for i := range d.w {
			d.w[i] = (2*rng.Float64() - 1) * bound
		}
		for i := range d.b {
			d.b[i] = (2*rng.Float64() - 1) * bound
		}
		n.layers[l] = d
	}
	return n
}

// activations allocates one buffer per layer output; acts[0] is filled with the input by forward.
func (n *network) activations() [][]float64 {
	acts := make([][]float64, len(n.layers)+1)
	for l, d := range n.layers {
		acts[l+1] = make([]float64, d.out)
	}
	return acts
}

// forward fills acts and returns the positive-class probability of x.
func (n *network) forward(x []float64, acts [][]float64) float64 {
	acts[0] = x
	last := len(n.layers) - 1
	for l := range n.layers {
		d := &n.layers[l]
		prev, cur := acts[l], acts[l+1]
		for o := range d.out {
			z := d.b[o]
			row := d.w[o*d.in : (o+1)*d.in]
			for i, v := range prev {
				z += row[i] * v
			}
			if l < last {
				z = max(z, 0)
			}
			cur[o] = z
		}
	}
	return sigmoid(acts[len(acts)-1][0])
}

func (n *network) proba(x []float64) float64 {
	return n.forward(x, n.activations())
}

// grads mirrors the parameter shapes of a network.
type grads struct {
	w [][]float64
	b [][]float64
}

func newGrads(n *network) grads {
	g := grads{w: make([][]float64, len(n.layers)), b: make([][]float64, len(n.layers))}
	for l, d := range n.layers {
		g.w[l] = make([]float64, len(d.w))
		g.b[l] = make([]float64, len(d.b))
	}
	return g
}

func (g grads) zero() {
	for l := range g.w {
		clear(g.w[l])
		clear(g.b[l])
	}
}

// backward adds the log-loss gradient of one row to g. acts must hold the row's forward pass.
func (n *network) backward(acts [][]float64, p, y float64, deltas [][]float64, g grads) {
	last := len(n.layers) - 1
	deltas[last][0] = p - y

	for l := last; l >= 0; l-- {
		d := &n.layers[l]
		delta, in := deltas[l], acts[l]
		for o := range d.out {
			gw := g.w[l][o*d.in : (o+1)*d.in]
			for i, v := range in {
				gw[i] += delta[o] * v
			}
			g.b[l][o] += delta[o]
		}
		if l == 0 {
			break
		}

		prev := deltas[l-1]
		for i := range d.in {
			if in[i] <= 0 {
				prev[i] = 0
				continue
			}
			var sum float64
			for o := range d.out {
				sum += d.w[o*d.in+i] * delta[o]
			}
			prev[i] = sum
		}
	}
}

// adam keeps the first and second moment estimates of every parameter.
type adam struct {
	lr   float64
	step int
	m, v grads
}

func (a *adam) update(n *network, g grads) {
	a.step++
	t := float64(a.step)
	lr := a.lr * math.Sqrt(1-math.Pow(adamBeta2, t)) / (1 - math.Pow(adamBeta1, t))

	apply := func(params, grad, m, v []float64) {
		for i, gi := range grad {
			m[i] = adamBeta1*m[i] + (1-adamBeta1)*gi
			v[i] = adamBeta2*v[i] + (1-adamBeta2)*gi*gi
			params[i] -= lr * m[i] / (math.Sqrt(v[i]) + adamEpsilon)
		}
	}
	for l := range n.layers {
		apply(n.layers[l].w, g.w[l], a.m.w[l], a.v.w[l])
		apply(n.layers[l].b, g.b[l], a.m.b[l], a.v.b[l])
	}
}

// fitNetwork trains with minibatch Adam on the L2-penalized log loss. Rows are reshuffled every epoch from
// rng. Training stops after MaxEpochs, or once the epoch loss has failed to improve by Tolerance for more
// than Patience consecutive epochs.
func fitNetwork(rows [][]float64, labels []int, cfg MLPConfig, rng *rand.Rand) (*network, int) {
	n := len(rows)
	net := newNetwork(len(rows[0]), cfg.HiddenLayers, rng)
	g := newGrads(net)
	opt := &adam{lr: cfg.LearningRate, m: newGrads(net), v: newGrads(net)}

	acts := net.activations()
	deltas := make([][]float64, len(net.layers))
	for l, d := range net.layers {
		deltas[l] = make([]float64, d.out)
	}

	batchSize := min(cfg.BatchSize, n)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	best := math.Inf(1)
	stale, epochs := 0, 0
	for epochs < cfg.MaxEpochs {
		epochs++
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

		var epochLoss float64
		for start := 0; start < n; start += batchSize {
			batch := order[start:min(start+batchSize, n)]
			bs := float64(len(batch))
			g.zero()

			var loss float64
			for _, idx := range batch {
				y := float64(labels[idx])
				p := net.forward(rows[idx], acts)
				loss += logLoss(p, y)
				net.backward(acts, p, y, deltas, g)
			}

			var penalty float64
			for l := range net.layers {
				for i, w := range net.layers[l].w {
					penalty += w * w
					g.w[l][i] = g.w[l][i]/bs + cfg.Alpha*w/bs
				}
				for i := range g.b[l] {
					g.b[l][i] /= bs
				}
			}
			loss = loss/bs + 0.5*cfg.Alpha*penalty/bs

			opt.update(net, g)
			epochLoss += loss * bs
		}
		epochLoss /= float64(n)

		if epochLoss > best-cfg.Tolerance {
			stale++
		} else {
			stale = 0
		}
		best = min(best, epochLoss)
		if stale > cfg.Patience {
			break
		}
	}
	return net, epochs
}

// inputWeight sums the absolute first-layer weights leaving each input column.
func (n *network) inputWeight() []float64 {
	d := n.layers[0]
	out := make([]float64, d.in)
	for o := range d.out {
		for i := range d.in {
			out[i] += math.Abs(d.w[o*d.in+i])
		}
	}
	return out
}

func logLoss(p, y float64) float64 {
	p = min(max(p, probClip), 1-probClip)
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}
