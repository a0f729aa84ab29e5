package recall

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Hidden layer widths of the recall classifier.
var hiddenSizes = []int{8, 4}

// MLP is a small fully connected classifier: ReLU hidden layers and a
// sigmoid output, trained with binary cross-entropy and Adam.
type MLP struct {
	cfg Config

	mu       sync.RWMutex
	layers   []layer
	trained  bool
	disposed bool
	loss     float64
}

// NewMLPFactory returns a ModelFactory that creates MLPs configured by cfg.
func NewMLPFactory(cfg Config) ModelFactory {
	cfg = cfg.withDefaults()
	return func() Model {
		return NewMLP(cfg)
	}
}

// NewMLP creates an untrained classifier with weights drawn from cfg.Seed.
func NewMLP(cfg Config) *MLP {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	sizes := append([]int{FeatureCount}, hiddenSizes...)
	sizes = append(sizes, 1)
	layers := make([]layer, 0, len(sizes)-1)
	for i := 0; i+1 < len(sizes); i++ {
		hidden := i+2 < len(sizes)
		layers = append(layers, newLayer(sizes[i], sizes[i+1], hidden, rng))
	}
	return &MLP{cfg: cfg, layers: layers}
}

// Loss returns the mean training loss of the last epoch.
func (m *MLP) Loss() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loss
}

// Train fits the classifier with mini-batch Adam over a fixed number of
// epochs. Sample order is shuffled per epoch from the configured seed.
func (m *MLP) Train(ctx context.Context, samples []TrainingSample) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}
	for i, s := range samples {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return ErrModelUnavailable
	}
	if m.trained {
		return fmt.Errorf("model already trained")
	}

	xs := make([]*mat.VecDense, len(samples))
	for i, s := range samples {
		xs[i] = mat.NewVecDense(FeatureCount, append([]float64(nil), s.Features...))
	}

	params := m.params()
	grads := make([]layerGrad, len(m.layers))
	gradBlocks := make([][]float64, 0, len(params))
	for i, l := range m.layers {
		grads[i] = newLayerGrad(l)
		gradBlocks = append(gradBlocks, grads[i].w.RawMatrix().Data, grads[i].b.RawVector().Data)
	}

	batch := min(m.cfg.BatchSize, len(samples))
	batches := (len(samples) + batch - 1) / batch
	opt := newAdam(m.cfg.LearningRate, params)
	sched := newCosineAnnealing(m.cfg.LearningRate, batches*m.cfg.Epochs)
	rng := rand.New(rand.NewPCG(m.cfg.Seed, uint64(len(samples))))

	order := make([]int, len(samples))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < m.cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var epochLoss float64
		for start := 0; start < len(order); start += batch {
			end := min(start+batch, len(order))
			for _, g := range grads {
				g.zero()
			}
			for _, idx := range order[start:end] {
				epochLoss += m.accumulate(xs[idx], float64(samples[idx].Label), grads)
			}
			scale := 1 / float64(end-start)
			for _, block := range gradBlocks {
				for i := range block {
					block[i] *= scale
				}
			}
			opt.setLR(sched.lr())
			opt.update(params, gradBlocks)
			sched.advance()
		}
		m.loss = epochLoss / float64(len(samples))
	}

	m.trained = true
	return nil
}

// Predict returns the probability of a correct recall.
func (m *MLP) Predict(features []float64) (float64, error) {
	if len(features) != FeatureCount {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrFeatureMismatch, len(features), FeatureCount)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.disposed || !m.trained {
		return 0, ErrModelUnavailable
	}

	x := mat.NewVecDense(FeatureCount, append([]float64(nil), features...))
	for _, l := range m.layers {
		x = l.forward(x).out
	}
	return x.AtVec(0), nil
}

// Dispose drops the weights.
func (m *MLP) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disposed = true
	m.layers = nil
}

// mlpSnapshot is the serialized form of a trained MLP.
type mlpSnapshot struct {
	Layers []layerSnapshot `json:"layers"`
	Loss   float64         `json:"loss"`
}

type layerSnapshot struct {
	Rows    int       `json:"rows"`
	Cols    int       `json:"cols"`
	Weights []float64 `json:"weights"`
	Bias    []float64 `json:"bias"`
	ReLU    bool      `json:"relu"`
}

// MarshalBinary encodes the trained weights as JSON.
func (m *MLP) MarshalBinary() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.disposed || !m.trained {
		return nil, ErrModelUnavailable
	}

	snap := mlpSnapshot{Loss: m.loss}
	for _, l := range m.layers {
		rows, cols := l.w.Dims()
		snap.Layers = append(snap.Layers, layerSnapshot{
			Rows:    rows,
			Cols:    cols,
			Weights: append([]float64(nil), l.w.RawMatrix().Data...),
			Bias:    append([]float64(nil), l.b.RawVector().Data...),
			ReLU:    l.relu,
		})
	}
	return json.Marshal(snap)
}

// UnmarshalMLP restores a trained MLP from MarshalBinary output. The layer
// shapes must chain from FeatureCount inputs to a single sigmoid output.
func UnmarshalMLP(cfg Config, data []byte) (*MLP, error) {
	var snap mlpSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if len(snap.Layers) == 0 {
		return nil, fmt.Errorf("decode model: no layers")
	}

	in := FeatureCount
	layers := make([]layer, 0, len(snap.Layers))
	for i, ls := range snap.Layers {
		last := i == len(snap.Layers)-1
		switch {
		case ls.Cols != in:
			return nil, fmt.Errorf("%w: layer %d takes %d inputs, want %d", ErrFeatureMismatch, i, ls.Cols, in)
		case ls.Rows <= 0 || len(ls.Weights) != ls.Rows*ls.Cols || len(ls.Bias) != ls.Rows:
			return nil, fmt.Errorf("decode model: layer %d has inconsistent shape", i)
		case ls.ReLU == last:
			return nil, fmt.Errorf("decode model: layer %d has the wrong activation", i)
		case !finite(ls.Weights) || !finite(ls.Bias):
			return nil, fmt.Errorf("decode model: layer %d has non-finite values", i)
		}
		layers = append(layers, layer{
			w:    mat.NewDense(ls.Rows, ls.Cols, ls.Weights),
			b:    mat.NewVecDense(ls.Rows, ls.Bias),
			relu: ls.ReLU,
		})
		in = ls.Rows
	}
	if in != 1 {
		return nil, fmt.Errorf("decode model: %d outputs, want 1", in)
	}
	return &MLP{cfg: cfg.withDefaults(), layers: layers, trained: true, loss: snap.Loss}, nil
}

// NewMLPDecoder returns a ModelDecoder for MLPs saved by MarshalBinary.
func NewMLPDecoder(cfg Config) ModelDecoder {
	return func(data []byte) (Model, error) {
		m, err := UnmarshalMLP(cfg, data)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

func finite(vs []float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// accumulate runs one forward and backward pass, adding the gradients of the
// cross-entropy loss to grads. It returns the sample's loss.
func (m *MLP) accumulate(x *mat.VecDense, y float64, grads []layerGrad) float64 {
	acts := make([]activation, len(m.layers))
	in := x
	for i, l := range m.layers {
		acts[i] = l.forward(in)
		in = acts[i].out
	}

	p := in.AtVec(0)
	// Sigmoid with cross-entropy: dL/dz = p - y.
	dz := mat.NewVecDense(1, []float64{p - y})
	for i := len(m.layers) - 1; i >= 0; i-- {
		dIn := m.layers[i].backward(acts[i], dz, grads[i])
		if i > 0 {
			dz = reluGrad(acts[i-1].z, dIn)
		}
	}

	p = math.Min(math.Max(p, 1e-7), 1-1e-7)
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

// params returns the raw weight and bias slices in layer order.
func (m *MLP) params() [][]float64 {
	out := make([][]float64, 0, 2*len(m.layers))
	for _, l := range m.layers {
		out = append(out, l.w.RawMatrix().Data, l.b.RawVector().Data)
	}
	return out
}

// layer is a dense layer computing act(W·x + b).
type layer struct {
	w    *mat.Dense
	b    *mat.VecDense
	relu bool
}

type activation struct {
	in  *mat.VecDense
	z   *mat.VecDense
	out *mat.VecDense
}

type layerGrad struct {
	w *mat.Dense
	b *mat.VecDense
}

// newLayer uses Glorot uniform initialization. Hidden biases start slightly
// positive so ReLU units are active at the start.
func newLayer(in, out int, relu bool, rng *rand.Rand) layer {
	limit := math.Sqrt(6.0 / float64(in+out))
	w := make([]float64, out*in)
	for i := range w {
		w[i] = (rng.Float64()*2 - 1) * limit
	}
	b := make([]float64, out)
	if relu {
		for i := range b {
			b[i] = 0.01
		}
	}
	return layer{w: mat.NewDense(out, in, w), b: mat.NewVecDense(out, b), relu: relu}
}

func (l layer) forward(x *mat.VecDense) activation {
	rows, _ := l.w.Dims()
	z := mat.NewVecDense(rows, nil)
	z.MulVec(l.w, x)
	z.AddVec(z, l.b)

	out := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		v := z.AtVec(i)
		if l.relu {
			v = math.Max(0, v)
		} else {
			v = sigmoid(v)
		}
		out.SetVec(i, v)
	}
	return activation{in: x, z: z, out: out}
}

// backward adds dL/dW and dL/db for pre-activation gradient dz to g and
// returns dL/dx.
func (l layer) backward(a activation, dz *mat.VecDense, g layerGrad) *mat.VecDense {
	g.w.RankOne(g.w, 1, dz, a.in)
	g.b.AddVec(g.b, dz)

	_, cols := l.w.Dims()
	dIn := mat.NewVecDense(cols, nil)
	dIn.MulVec(l.w.T(), dz)
	return dIn
}

func newLayerGrad(l layer) layerGrad {
	rows, cols := l.w.Dims()
	return layerGrad{w: mat.NewDense(rows, cols, nil), b: mat.NewVecDense(rows, nil)}
}

func (g layerGrad) zero() {
	g.w.Zero()
	g.b.Zero()
}

func reluGrad(z, dOut *mat.VecDense) *mat.VecDense {
	n := z.Len()
	dz := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		if z.AtVec(i) > 0 {
			dz.SetVec(i, dOut.AtVec(i))
		}
	}
	return dz
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
