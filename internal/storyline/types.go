// Package storyline turns a tracker's day of places and movements into
// display rows for the daily note.
package storyline

import "github.com/mrwolf/daybook/internal/polyline"

// TrackPoint is a single GPS fix recorded during an activity.
type TrackPoint = polyline.Point

// Activity is one tracked activity (walking, cycling, transport...) inside a segment.
// Missing figures are zero.
type Activity struct {
	Kind        string
	Group       string
	StartTime   string
	EndTime     string
	Duration    float64 // seconds
	Distance    float64 // metres
	Steps       int
	Calories    int
	TrackPoints []TrackPoint
}

// Place describes a location visit.
type Place struct {
	ID           int64
	Name         string
	Type         string // "home", "work", "foursquare", "user", "unknown"...
	FoursquareID string
	Lat          float64
	Lon          float64
}

// Segment is either a PlaceVisit or a Movement.
type Segment interface {
	segment()
}

// PlaceVisit is time spent at one place, possibly with activities recorded there.
type PlaceVisit struct {
	StartTime  string
	EndTime    string
	Place      Place
	Activities []Activity
}

// Movement is a stretch of travel made of one or more activities.
type Movement struct {
	StartTime  string
	EndTime    string
	Activities []Activity
}

func (PlaceVisit) segment() {}
func (Movement) segment()   {}

// ActivitySummary is the tracker's per-activity total for the day.
type ActivitySummary struct {
	Activity string
	Group    string
	Duration float64
	Distance float64
	Steps    int
	Calories int
}

// Day is the raw storyline for one date.
type Day struct {
	Date     string // YYYYMMDD
	Summary  []ActivitySummary
	Segments []Segment
}

// PlaceInfo is the place metadata attached to a display row.
type PlaceInfo struct {
	Name         string
	Lat          float64
	Lon          float64
	FoursquareID string
	Type         string
}

// Route is the encoded geometry of a movement activity.
// Path always starts with RoutePrefix; Start and Finish are nil without trackpoints.
type Route struct {
	Path   string
	Start  *TrackPoint
	Finish *TrackPoint
}

// DisplaySegment is one row of the storyline in the rendered note.
type DisplaySegment struct {
	Start    string
	End      string
	Activity string
	Duration float64
	Distance float64
	Steps    int
	Calories int
	Place    *PlaceInfo
	Route    *Route
}

// Storyline is the presentation-ready day.
type Storyline struct {
	Summary  []ActivitySummary
	Segments []DisplaySegment
}
