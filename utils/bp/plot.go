/*
	bp – Braille Patterns

	Simple way to represent numeric lines like a plot in text. Every braille
	cell holds two samples (left and right dot columns) and four dots of height.
*/

package bp

import (
	"fmt"
	"math"
	"strings"
)

// ⣿⣶⣤⣀ – ok
// ⣾⣷⣴⣦⣠⣄ - ok
// ⣼⣧⣸⣇⣰⣆ - ok
// ⢸⢰⢠⢀⡇⡆⡄⡀ – ok
const (
	m44 = "⣿"
	m33 = "⣶"
	m22 = "⣤"
	m11 = "⣀"

	m34 = "⣾"
	m43 = "⣷"
	m23 = "⣴"
	m32 = "⣦"
	m12 = "⣠"
	m21 = "⣄"

	m24 = "⣼"
	m42 = "⣧"
	m14 = "⣸"
	m41 = "⣇"
	m13 = "⣰"
	m31 = "⣆"

	m40 = "⡇"
	m30 = "⡆"
	m20 = "⡄"
	m10 = "⡀"

	m04 = "⢸"
	m03 = "⢰"
	m02 = "⢠"
	m01 = "⢀"
	m00 = "⠀"

	dotsPerCell = 4
)

// bps[left][right] is the cell with that many dots lit per column.
var bps = [5][]rune{
	[]rune(m00 + m01 + m02 + m03 + m04),
	[]rune(m10 + m11 + m12 + m13 + m14),
	[]rune(m20 + m21 + m22 + m23 + m24),
	[]rune(m30 + m31 + m32 + m33 + m34),
	[]rune(m40 + m41 + m42 + m43 + m44),
}

// SimplePlot renders data as size rows of braille cells framed by the max
// value above and the min value below. The lowest sample still lights one dot.
func SimplePlot(size int, data []float64) string {
	if len(data) == 0 || size <= 0 {
		return ""
	}

	lo, hi := minMax(data)

	return fmt.Sprintf("%.2f\n%s%.2f", hi, render(size, dots(size, lo, hi, data)), lo)
}

func dots(size int, lo, hi float64, data []float64) []int {
	height := float64(size*dotsPerCell - 1)

	out := make([]int, len(data))
	for i, v := range data {
		if hi == lo {
			out[i] = 1
			continue
		}
		out[i] = 1 + int(math.Round((v-lo)/(hi-lo)*height))
	}

	return out
}

func render(size int, ds []int) string {
	if len(ds)%2 != 0 {
		ds = append(ds, 0)
	}

	sb := strings.Builder{}
	for row := size - 1; row >= 0; row-- {
		floor := row * dotsPerCell
		for c := 0; c < len(ds); c += 2 {
			sb.WriteRune(bps[clamp(ds[c]-floor)][clamp(ds[c+1]-floor)])
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func clamp(n int) int {
	return min(dotsPerCell, max(0, n))
}

func minMax(xs []float64) (float64, float64) {
	minimum, maximum := math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		minimum = min(minimum, x)
		maximum = max(maximum, x)
	}

	return minimum, maximum
}
