package shell

import (
	"fmt"
	"strings"

	"github.com/domino14/cifras/puzzles"
	"github.com/domino14/cifras/step"
)

// RenderSolution shows a puzzle, the value the best path reaches and the
// path's steps in the order they were performed.
func RenderSolution(p puzzles.Puzzle, best *step.Stack, nodes uint64) (string, error) {
	result, err := best.Result()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(p.String())
	fmt.Fprintf(&sb, "\nResult obtained: %d", result)
	if result == p.Target {
		sb.WriteString(" (EXACT!)")
	}
	sb.WriteString("\n")
	for i, st := range best.Steps() {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, st)
	}
	if nodes > 0 {
		fmt.Fprintf(&sb, "Nodes explored: %d", nodes)
	} else {
		sb.WriteString("(cached)")
	}
	return sb.String(), nil
}
