package stats

import (
	"fmt"
	"io"
	"time"

	"github.com/aybabtme/uniplot/histogram"
)

const histogramBins = 10

// Summary aggregates the outcome of many solves.
type Summary struct {
	Puzzles int
	Exact   int

	Distance Statistic
	Steps    Statistic
	Nodes    Statistic
	Seconds  Statistic

	nodes []float64
}

// Add records one solved puzzle.
func (s *Summary) Add(distance int64, steps int, nodes uint64, elapsed time.Duration) {
	s.Puzzles++
	if distance == 0 {
		s.Exact++
	}
	s.Distance.Push(float64(distance))
	s.Steps.Push(float64(steps))
	s.Nodes.Push(float64(nodes))
	s.Seconds.Push(elapsed.Seconds())
	s.nodes = append(s.nodes, float64(nodes))
}

// ExactRate is the fraction of puzzles whose target was reached.
func (s *Summary) ExactRate() float64 {
	if s.Puzzles == 0 {
		return 0
	}
	return float64(s.Exact) / float64(s.Puzzles)
}

// NodesHistogram buckets the explored node counts.
func (s *Summary) NodesHistogram() histogram.Histogram {
	return histogram.Hist(histogramBins, s.nodes)
}

// Fprint writes a human readable report, with confidence intervals at the
// given confidence level in percent.
func (s *Summary) Fprint(w io.Writer, confidence float64) error {
	_, err := fmt.Fprintf(w,
		"Puzzles: %d\n"+
			"Exact: %d (%.2f%%)\n"+
			"Distance: %.3f ± %.3f (max %.0f)\n"+
			"Steps: %.3f ± %.3f\n"+
			"Nodes: %.1f ± %.1f (min %.0f, max %.0f)\n"+
			"Seconds per puzzle: %.4f ± %.4f\n",
		s.Puzzles,
		s.Exact, 100*s.ExactRate(),
		s.Distance.Mean(), s.Distance.ConfidenceInterval(confidence), s.Distance.Max(),
		s.Steps.Mean(), s.Steps.ConfidenceInterval(confidence),
		s.Nodes.Mean(), s.Nodes.ConfidenceInterval(confidence), s.Nodes.Min(), s.Nodes.Max(),
		s.Seconds.Mean(), s.Seconds.ConfidenceInterval(confidence))
	if err != nil {
		return err
	}
	if len(s.nodes) < 2 || s.Nodes.Min() == s.Nodes.Max() {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Nodes explored:"); err != nil {
		return err
	}
	return histogram.Fprint(w, s.NodesHistogram(), histogram.Linear(40))
}
