package textrank

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// Damping is the probability of following an edge of the sentence graph
	Damping = 0.85

	// Epsilon is the L2 change at which the power method stops
	Epsilon = 1e-4

	zeroDivisionPrevention = 1e-7
	maxIterations          = 10000
)

// RateSentences scores each sentence by its centrality in the
// word-overlap similarity graph. Scores follow the input order.
func RateSentences(sentences []Sentence) []float64 {
	if len(sentences) == 0 {
		return nil
	}

	words := make([][]string, len(sentences))
	for i, s := range sentences {
		words[i] = s.Words
	}

	return powerMethod(transitionMatrix(words), Epsilon)
}

// transitionMatrix builds the damped, row-normalized similarity matrix
func transitionMatrix(words [][]string) *mat.Dense {
	n := len(words)
	weights := mat.NewDense(n, n, nil)

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			rating := rateEdge(words[i], words[j])
			weights.Set(i, j, rating)
			weights.Set(j, i, rating)
		}
	}

	teleport := (1 - Damping) / float64(n)
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		row := weights.RawRowView(i)
		sum := 0.0
		for _, w := range row {
			sum += w
		}
		for j, w := range row {
			m.Set(i, j, teleport+Damping*(w/(sum+zeroDivisionPrevention)))
		}
	}

	return m
}

// rateEdge weights the overlap of two word lists. Every occurrence of a word
// of a in b counts, normalized by the log lengths of both lists.
func rateEdge(a, b []string) float64 {
	counts := make(map[string]int, len(b))
	for _, w := range b {
		counts[w]++
	}

	rank := 0
	for _, w := range a {
		rank += counts[w]
	}
	if rank == 0 {
		return 0
	}

	norm := math.Log(float64(len(a))) + math.Log(float64(len(b)))
	if math.Abs(norm) < 1e-8 {
		// Both lists hold a single word.
		return float64(rank)
	}
	return float64(rank) / norm
}

// powerMethod returns the stationary vector of m, iterating on its transpose
// from the uniform distribution.
func powerMethod(m *mat.Dense, epsilon float64) []float64 {
	n, _ := m.Dims()

	p := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		p.SetVec(i, 1/float64(n))
	}

	next := mat.NewVecDense(n, nil)
	diff := mat.NewVecDense(n, nil)
	transposed := m.T()

	for i := 0; i < maxIterations; i++ {
		next.MulVec(transposed, p)
		diff.SubVec(next, p)
		lambda := mat.Norm(diff, 2)
		p.CopyVec(next)
		if lambda <= epsilon {
			break
		}
	}

	ranks := make([]float64, n)
	for i := range ranks {
		ranks[i] = p.AtVec(i)
	}
	return ranks
}
