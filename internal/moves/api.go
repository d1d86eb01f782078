package moves

import "github.com/mrwolf/daybook/internal/storyline"

// Wire format of GET /user/storyline/daily/{date}.

type apiDay struct {
	Date         string       `json:"date"`
	Summary      []apiSummary `json:"summary"`
	Segments     []apiSegment `json:"segments"`
	CaloriesIdle int          `json:"caloriesIdle"`
	LastUpdate   string       `json:"lastUpdate"`
}

type apiSummary struct {
	Activity string  `json:"activity"`
	Group    string  `json:"group"`
	Duration float64 `json:"duration"`
	Distance float64 `json:"distance"`
	Steps    int     `json:"steps"`
	Calories int     `json:"calories"`
}

type apiSegment struct {
	Type       string        `json:"type"` // "place", "move" or "off"
	StartTime  string        `json:"startTime"`
	EndTime    string        `json:"endTime"`
	Place      *apiPlace     `json:"place"`
	Activities []apiActivity `json:"activities"`
	LastUpdate string        `json:"lastUpdate"`
}

type apiPlace struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Type         string      `json:"type"`
	FoursquareID string      `json:"foursquareId"`
	Location     apiLocation `json:"location"`
}

type apiLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type apiActivity struct {
	Activity    string          `json:"activity"`
	Group       string          `json:"group"`
	Manual      bool            `json:"manual"`
	StartTime   string          `json:"startTime"`
	EndTime     string          `json:"endTime"`
	Duration    float64         `json:"duration"`
	Distance    float64         `json:"distance"`
	Steps       int             `json:"steps"`
	Calories    int             `json:"calories"`
	TrackPoints []apiTrackPoint `json:"trackPoints"`
}

type apiTrackPoint struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Time string  `json:"time"`
}

// toDay converts the wire format. A segment with a place is a visit;
// anything else is movement.
func (d apiDay) toDay() *storyline.Day {
	day := &storyline.Day{
		Date:     d.Date,
		Segments: make([]storyline.Segment, 0, len(d.Segments)),
	}

	for _, s := range d.Summary {
		day.Summary = append(day.Summary, storyline.ActivitySummary{
			Activity: s.Activity,
			Group:    s.Group,
			Duration: s.Duration,
			Distance: s.Distance,
			Steps:    s.Steps,
			Calories: s.Calories,
		})
	}

	for _, s := range d.Segments {
		activities := convertActivities(s.Activities)
		if s.Place != nil {
			day.Segments = append(day.Segments, storyline.PlaceVisit{
				StartTime: s.StartTime,
				EndTime:   s.EndTime,
				Place: storyline.Place{
					ID:           s.Place.ID,
					Name:         s.Place.Name,
					Type:         s.Place.Type,
					FoursquareID: s.Place.FoursquareID,
					Lat:          s.Place.Location.Lat,
					Lon:          s.Place.Location.Lon,
				},
				Activities: activities,
			})
			continue
		}
		day.Segments = append(day.Segments, storyline.Movement{
			StartTime:  s.StartTime,
			EndTime:    s.EndTime,
			Activities: activities,
		})
	}

	return day
}

func convertActivities(in []apiActivity) []storyline.Activity {
	out := make([]storyline.Activity, 0, len(in))
	for _, a := range in {
		var points []storyline.TrackPoint
		for _, p := range a.TrackPoints {
			points = append(points, storyline.TrackPoint{Lat: p.Lat, Lon: p.Lon})
		}
		out = append(out, storyline.Activity{
			Kind:        a.Activity,
			Group:       a.Group,
			StartTime:   a.StartTime,
			EndTime:     a.EndTime,
			Duration:    a.Duration,
			Distance:    a.Distance,
			Steps:       a.Steps,
			Calories:    a.Calories,
			TrackPoints: points,
		})
	}
	return out
}
