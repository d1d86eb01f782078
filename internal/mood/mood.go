// Package mood reduces mood-tracker samples to the day's averages.
package mood

import (
	"math"
	"strconv"
	"time"

	"github.com/mrwolf/daybook/internal/dates"
)

// SampleWindow is how many of the most recent samples are looked at.
const SampleWindow = 10

// NoDataGlyph stands in for a face when nothing was logged on the day.
const NoDataGlyph = "–"

// ProductivityPlaceholder is emitted until a productivity source exists.
const ProductivityPlaceholder = "0"

// Faces runs from worst to best.
var Faces = [5]string{"😫", "😟", "😐", "😌", "😀"}

// Sample is one logged mood entry.
type Sample struct {
	StartTimeEpoch int64   `json:"start_time_epoch"`
	Awake          float64 `json:"awake"`
	Happy          float64 `json:"happy"`
	Relaxed        float64 `json:"relaxed"`
}

// Metric is an averaged score with its face.
type Metric struct {
	Average float64
	Glyph   string
}

// String formats the metric as "0.667 😌".
func (m Metric) String() string {
	return strconv.FormatFloat(m.Average, 'f', -1, 64) + " " + m.Glyph
}

// Summary is the mood block of the daily note.
type Summary struct {
	Logs         int
	Happy        Metric
	Relax        Metric
	Awake        Metric
	Productivity string
}

// Row is a name/value line of the mood table.
type Row struct {
	Name  string
	Value string
}

// Rows returns the five table lines in display order.
func (s Summary) Rows() []Row {
	return []Row{
		{Name: "Logs", Value: strconv.Itoa(s.Logs)},
		{Name: "Happy", Value: s.Happy.String()},
		{Name: "Relax", Value: s.Relax.String()},
		{Name: "Awake", Value: s.Awake.String()},
		{Name: "Productivity", Value: s.Productivity},
	}
}

// Aggregate averages the samples logged on the day before reference.
// Only the first SampleWindow samples are considered; dates are taken in loc.
func Aggregate(samples []Sample, reference dates.Date, loc *time.Location) Summary {
	if len(samples) > SampleWindow {
		samples = samples[:SampleWindow]
	}

	var logs int
	var awake, happy, relaxed float64
	for _, s := range samples {
		logged := dates.In(time.Unix(s.StartTimeEpoch, 0), loc)
		if dates.DaysBetween(logged, reference) != 1 {
			continue
		}
		logs++
		awake += s.Awake
		happy += s.Happy
		relaxed += s.Relaxed
	}

	return Summary{
		Logs:         logs,
		Happy:        metric(happy, logs),
		Relax:        metric(relaxed, logs),
		Awake:        metric(awake, logs),
		Productivity: ProductivityPlaceholder,
	}
}

func metric(sum float64, logs int) Metric {
	if logs == 0 {
		return Metric{Average: 0, Glyph: NoDataGlyph}
	}
	avg := round3(sum / float64(logs))
	return Metric{Average: avg, Glyph: Face(avg)}
}

// Face maps a 0..1 score to one of the five faces.
func Face(score float64) string {
	bucket := int(math.Round(score * 5))
	if bucket < 1 {
		bucket = 1
	}
	if bucket > len(Faces) {
		bucket = len(Faces)
	}
	return Faces[bucket-1]
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
