// Package neural implements the small feed-forward network shared by
// the trainable sub-models: softmax classification for drug
// interactions and sigmoid regression for the risk score. The backend
// is plain CPU math behind a narrow surface so the ensemble contract
// never depends on how predictions are computed.
package neural

import (
	"math"
	"math/rand"
)

// Network is a single-hidden-layer perceptron with tanh activation.
// Once training finishes the weights are read-only and safe to share
// across concurrent predictions.
type Network struct {
	inputs  int
	hidden  int
	outputs int

	w1 [][]float64 // hidden x inputs
	b1 []float64
	w2 [][]float64 // outputs x hidden
	b2 []float64
}

// New creates a network with deterministic, seed-derived initial
// weights so training runs are reproducible.
func New(inputs, hidden, outputs int, seed int64) *Network {
	rng := rand.New(rand.NewSource(seed))
	n := &Network{
		inputs:  inputs,
		hidden:  hidden,
		outputs: outputs,
		w1:      make([][]float64, hidden),
		b1:      make([]float64, hidden),
		w2:      make([][]float64, outputs),
		b2:      make([]float64, outputs),
	}
	scale1 := 1.0 / math.Sqrt(float64(inputs))
	for j := range n.w1 {
		n.w1[j] = make([]float64, inputs)
		for i := range n.w1[j] {
			n.w1[j][i] = (rng.Float64()*2 - 1) * scale1
		}
	}
	scale2 := 1.0 / math.Sqrt(float64(hidden))
	for o := range n.w2 {
		n.w2[o] = make([]float64, hidden)
		for j := range n.w2[o] {
			n.w2[o][j] = (rng.Float64()*2 - 1) * scale2
		}
	}
	return n
}

// forward computes hidden activations and linear outputs.
func (n *Network) forward(x []float64) (hidden, out []float64) {
	hidden = make([]float64, n.hidden)
	for j := 0; j < n.hidden; j++ {
		sum := n.b1[j]
		for i := 0; i < n.inputs; i++ {
			sum += n.w1[j][i] * x[i]
		}
		hidden[j] = math.Tanh(sum)
	}
	out = make([]float64, n.outputs)
	for o := 0; o < n.outputs; o++ {
		sum := n.b2[o]
		for j := 0; j < n.hidden; j++ {
			sum += n.w2[o][j] * hidden[j]
		}
		out[o] = sum
	}
	return hidden, out
}

// PredictProbs returns the softmax distribution over the output
// classes.
func (n *Network) PredictProbs(x []float64) []float64 {
	_, out := n.forward(x)
	return Softmax(out)
}

// PredictScalar returns sigmoid(first output), a value in (0,1).
func (n *Network) PredictScalar(x []float64) float64 {
	_, out := n.forward(x)
	return sigmoid(out[0])
}

// TrainClassification runs one SGD step against a one-hot class target
// with cross-entropy loss and returns the sample loss.
func (n *Network) TrainClassification(x []float64, class int, lr float64) float64 {
	hidden, out := n.forward(x)
	probs := Softmax(out)

	// Softmax + cross-entropy output delta.
	delta2 := make([]float64, n.outputs)
	for o := range delta2 {
		delta2[o] = probs[o]
		if o == class {
			delta2[o] -= 1
		}
	}
	n.backprop(x, hidden, delta2, lr)

	return -math.Log(math.Max(probs[class], 1e-12))
}

// TrainRegression runs one SGD step against a scalar target in [0,1]
// with squared-error loss on the sigmoid output and returns the sample
// loss.
func (n *Network) TrainRegression(x []float64, target, lr float64) float64 {
	hidden, out := n.forward(x)
	a := sigmoid(out[0])

	delta2 := make([]float64, n.outputs)
	delta2[0] = (a - target) * a * (1 - a)
	n.backprop(x, hidden, delta2, lr)

	diff := a - target
	return diff * diff
}

// backprop applies one gradient step given the output-layer deltas.
func (n *Network) backprop(x, hidden, delta2 []float64, lr float64) {
	delta1 := make([]float64, n.hidden)
	for j := 0; j < n.hidden; j++ {
		var sum float64
		for o := 0; o < n.outputs; o++ {
			sum += delta2[o] * n.w2[o][j]
		}
		delta1[j] = sum * (1 - hidden[j]*hidden[j])
	}

	for o := 0; o < n.outputs; o++ {
		for j := 0; j < n.hidden; j++ {
			n.w2[o][j] -= lr * delta2[o] * hidden[j]
		}
		n.b2[o] -= lr * delta2[o]
	}
	for j := 0; j < n.hidden; j++ {
		for i := 0; i < n.inputs; i++ {
			n.w1[j][i] -= lr * delta1[j] * x[i]
		}
		n.b1[j] -= lr * delta1[j]
	}
}

// Softmax converts raw scores into a probability distribution.
func Softmax(scores []float64) []float64 {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	var sum float64
	probs := make([]float64, len(scores))
	for i, s := range scores {
		probs[i] = math.Exp(s - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}
