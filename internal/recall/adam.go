package recall

import "math"

// adam implements the Adam optimizer with bias correction over a set of
// parameter blocks. Blocks are updated in place.
//
//	m = β1·m + (1-β1)·g
//	v = β2·v + (1-β2)·g²
//	w = w - lr · m̂ / (√v̂ + ε)
type adam struct {
	lr           float64
	beta1, beta2 float64
	eps          float64
	m, v         [][]float64
	step         int
}

func newAdam(lr float64, params [][]float64) *adam {
	a := &adam{
		lr:    lr,
		beta1: 0.9,
		beta2: 0.999,
		eps:   1e-8,
		m:     make([][]float64, len(params)),
		v:     make([][]float64, len(params)),
	}
	for i, p := range params {
		a.m[i] = make([]float64, len(p))
		a.v[i] = make([]float64, len(p))
	}
	return a
}

func (a *adam) setLR(lr float64) {
	a.lr = lr
}

// update applies one step. params and grads must have the shapes passed to
// newAdam.
func (a *adam) update(params, grads [][]float64) {
	a.step++
	c1 := 1 - math.Pow(a.beta1, float64(a.step))
	c2 := 1 - math.Pow(a.beta2, float64(a.step))

	for b := range params {
		p, g, m, v := params[b], grads[b], a.m[b], a.v[b]
		for i := range p {
			m[i] = a.beta1*m[i] + (1-a.beta1)*g[i]
			v[i] = a.beta2*v[i] + (1-a.beta2)*g[i]*g[i]
			p[i] -= a.lr * (m[i] / c1) / (math.Sqrt(v[i]/c2) + a.eps)
		}
	}
}

// cosineAnnealing decays the learning rate from lrMax towards zero over tMax
// steps.
//
//	lr_t = 0.5 · lr_max · (1 + cos(π·t/T_max))
type cosineAnnealing struct {
	lrMax float64
	tMax  int
	t     int
}

func newCosineAnnealing(lrMax float64, tMax int) *cosineAnnealing {
	return &cosineAnnealing{lrMax: lrMax, tMax: max(1, tMax)}
}

func (ca *cosineAnnealing) lr() float64 {
	return 0.5 * ca.lrMax * (1 + math.Cos(math.Pi*float64(ca.t)/float64(ca.tMax)))
}

func (ca *cosineAnnealing) advance() {
	ca.t++
}
