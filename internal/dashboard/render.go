package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/egregors/iotsim/internal/metrics"
)

// renderHourlyAvgTable joins hourly temperature and humidity averages into
// a text table, marking whether temperature went up, down or stayed.
func renderHourlyAvgTable(hourlyAverageT, hourlyAverageH []metrics.Value) string {
	var builder strings.Builder
	builder.WriteString("+-----------------+----------------+----------------+\n")
	builder.WriteString("|  Hour           |       T        |        H       |\n")
	builder.WriteString("+-----------------+----------------+----------------+\n")

	merge := make(map[time.Time]*[2]float64)
	row := func(t time.Time) *[2]float64 {
		if _, ok := merge[t]; !ok {
			merge[t] = &[2]float64{}
		}
		return merge[t]
	}
	for _, v := range hourlyAverageT {
		row(v.T)[0] = v.V
	}
	for _, v := range hourlyAverageH {
		row(v.T)[1] = v.V
	}

	hours := make([]time.Time, 0, len(merge))
	for h := range merge {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })

	up, down, same := "^", "v", "~"
	var prevT float64
	for i, hour := range hours {
		val := merge[hour]

		progMark := same
		switch {
		case i == 0:
		case val[0] > prevT:
			progMark = up
		case val[0] < prevT:
			progMark = down
		}

		builder.WriteString(fmt.Sprintf("| %-15s | %7s%7.2f | %14.2f |\n", hour.Format("2006-01-02 15h"), progMark, val[0], val[1]))
		prevT = val[0]
	}

	builder.WriteString("+-----------------+----------------+----------------+\n")

	return builder.String()
}
