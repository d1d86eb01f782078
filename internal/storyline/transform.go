package storyline

import (
	"errors"
	"fmt"

	"github.com/mrwolf/daybook/internal/polyline"
)

// ErrNoStorylineData is returned when the tracker has nothing for the day.
var ErrNoStorylineData = errors.New("no storyline data")

// RoutePrefix marks an encoded path for map renderers.
const RoutePrefix = "enc:"

// Transform flattens a raw day into display rows, in source order.
//
// A place visit becomes one row; when several activities were recorded during
// the visit their figures are summed. A movement becomes one row per activity,
// each with its encoded route. The first row always starts at 00:00 and the
// last row always ends at 00:00 so the day is covered end to end.
func Transform(day *Day) (*Storyline, error) {
	if day == nil || len(day.Segments) == 0 {
		return nil, ErrNoStorylineData
	}

	out := &Storyline{
		Summary:  day.Summary,
		Segments: make([]DisplaySegment, 0, len(day.Segments)),
	}

	for i, seg := range day.Segments {
		switch s := seg.(type) {
		case PlaceVisit:
			row, err := placeRow(s)
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
			out.Segments = append(out.Segments, row)
		case Movement:
			rows, err := movementRows(s)
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
			out.Segments = append(out.Segments, rows...)
		default:
			return nil, fmt.Errorf("segment %d: unknown segment type %T", i, seg)
		}
	}

	// Only off or empty movement segments: nothing to show.
	n := len(out.Segments)
	if n == 0 {
		return nil, ErrNoStorylineData
	}
	out.Segments[0].Start = DayBoundary
	out.Segments[n-1].End = DayBoundary

	return out, nil
}

func placeRow(v PlaceVisit) (DisplaySegment, error) {
	start, end, err := clockRange(v.StartTime, v.EndTime)
	if err != nil {
		return DisplaySegment{}, err
	}

	row := DisplaySegment{
		Start: start,
		End:   end,
		Place: &PlaceInfo{
			Name:         v.Place.Name,
			Lat:          v.Place.Lat,
			Lon:          v.Place.Lon,
			FoursquareID: v.Place.FoursquareID,
			Type:         v.Place.Type,
		},
	}

	if len(v.Activities) > 0 {
		row.Activity = v.Activities[0].Kind
	}
	// Summing also covers the single-activity case.
	for _, a := range v.Activities {
		row.Duration += a.Duration
		row.Distance += a.Distance
		row.Steps += a.Steps
		row.Calories += a.Calories
	}

	return row, nil
}

func movementRows(m Movement) ([]DisplaySegment, error) {
	rows := make([]DisplaySegment, 0, len(m.Activities))
	for _, a := range m.Activities {
		start, end, err := clockRange(a.StartTime, a.EndTime)
		if err != nil {
			return nil, fmt.Errorf("activity %s: %w", a.Kind, err)
		}

		rows = append(rows, DisplaySegment{
			Start:    start,
			End:      end,
			Activity: a.Kind,
			Duration: a.Duration,
			Distance: a.Distance,
			Steps:    a.Steps,
			Calories: a.Calories,
			Route:    encodeRoute(a.TrackPoints),
		})
	}
	return rows, nil
}

func encodeRoute(points []TrackPoint) *Route {
	if len(points) == 0 {
		return &Route{Path: RoutePrefix}
	}

	first := points[0]
	last := points[len(points)-1]
	return &Route{
		Path:   RoutePrefix + polyline.Encode(points),
		Start:  &first,
		Finish: &last,
	}
}
