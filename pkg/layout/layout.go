// Package layout packs items of known aspect ratio into justified rows.
package layout

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrViewport is returned for non-positive target dimensions.
	ErrViewport = errors.New("invalid viewport")
	// ErrAspect is returned for an item without a usable aspect ratio.
	ErrAspect = errors.New("invalid aspect ratio")
)

// Options tune the packer.
type Options struct {
	// Margin is the gap between boxes, both horizontally and vertically.
	Margin float64
}

// Box is the placement of one item. Index refers to the position of the
// item in the slice handed to Pack.
type Box struct {
	Index  int
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Pack arranges items with the given aspect ratios (width / height) into
// rows that fill maxWidth, aiming for rows about half of maxHeight tall.
// Rows and boxes within a row keep the input order.
func Pack(aspects []float64, maxWidth float64, maxHeight float64, o Options) ([][]Box, error) {
	if maxWidth <= 0 || maxHeight <= 0 || math.IsNaN(maxWidth) || math.IsNaN(maxHeight) {
		return nil, fmt.Errorf("%w: %gx%g", ErrViewport, maxWidth, maxHeight)
	}
	if len(aspects) == 0 {
		return nil, nil
	}

	ideal := maxHeight / 2
	total := 0.0
	weights := make([]int, len(aspects))
	for i, a := range aspects {
		if a <= 0 || math.IsNaN(a) || math.IsInf(a, 0) {
			return nil, fmt.Errorf("%w: item %d has %g", ErrAspect, i, a)
		}
		total += a * ideal
		weights[i] = int(math.Round(a * 100))
	}

	rows := int(math.Round(total / maxWidth))
	if rows < 1 {
		return [][]Box{natural(aspects, ideal, o.Margin)}, nil
	}
	if rows > len(aspects) {
		rows = len(aspects)
	}

	var out [][]Box
	y := 0.0
	for _, r := range partition(weights, rows) {
		sum := 0.0
		for i := r[0]; i < r[1]; i++ {
			sum += aspects[i]
		}
		usable := maxWidth - o.Margin*float64(r[1]-r[0]-1)
		if usable <= 0 {
			return nil, fmt.Errorf("%w: %d margins do not fit in %g", ErrViewport, r[1]-r[0]-1, maxWidth)
		}
		h := usable / sum

		row := make([]Box, 0, r[1]-r[0])
		x := 0.0
		for i := r[0]; i < r[1]; i++ {
			w := aspects[i] * h
			row = append(row, Box{Index: i, X: x, Y: y, Width: w, Height: h})
			x += w + o.Margin
		}
		out = append(out, row)
		y += h + o.Margin
	}
	return out, nil
}

// natural lays out a single short row at the ideal height without
// stretching it to the full width.
func natural(aspects []float64, h float64, margin float64) []Box {
	row := make([]Box, 0, len(aspects))
	x := 0.0
	for i, a := range aspects {
		w := a * h
		row = append(row, Box{Index: i, X: x, Width: w, Height: h})
		x += w + margin
	}
	return row
}

// partition splits weights into k contiguous ranges minimizing the largest
// range sum. It returns [start, end) pairs. k must be in [1, len(weights)].
func partition(weights []int, k int) [][2]int {
	n := len(weights)
	if k <= 1 {
		return [][2]int{{0, n}}
	}
	if k >= n {
		out := make([][2]int, n)
		for i := range out {
			out[i] = [2]int{i, i + 1}
		}
		return out
	}

	prefix := make([]int, n+1)
	for i, w := range weights {
		prefix[i+1] = prefix[i] + w
	}

	// cost[i][j]: best largest sum splitting items 0..i into j+1 ranges.
	cost := make([][]int, n)
	split := make([][]int, n)
	for i := range cost {
		cost[i] = make([]int, k)
		split[i] = make([]int, k)
		cost[i][0] = prefix[i+1]
	}

	for j := 1; j < k; j++ {
		for i := j; i < n; i++ {
			best := math.MaxInt
			at := j - 1
			for x := j - 1; x < i; x++ {
				c := max(cost[x][j-1], prefix[i+1]-prefix[x+1])
				if c < best {
					best = c
					at = x
				}
			}
			cost[i][j] = best
			split[i][j] = at
		}
	}

	out := make([][2]int, k)
	end := n
	i := n - 1
	for j := k - 1; j > 0; j-- {
		x := split[i][j]
		out[j] = [2]int{x + 1, end}
		end = x + 1
		i = x
	}
	out[0] = [2]int{0, end}
	return out
}
