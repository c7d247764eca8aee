package availability

import "time"

// SegmentLabelLayout renders segment bounds in column headers.
const SegmentLabelLayout = "02-Jan-06"

// Segment is an inclusive run of days with no occupancy change.
type Segment struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Label renders the segment as "30-Dec-25 → 31-Dec-25".
func (s Segment) Label() string {
	return s.From.Format(SegmentLabelLayout) + " → " + s.To.Format(SegmentLabelLayout)
}

// Days returns the number of days in the segment.
func (s Segment) Days() int {
	n := 0
	for d := s.From; !d.After(s.To); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// ChangePoints returns the days on which any category's value differs from
// the previous day. The first day is always included and one sentinel, the
// day after the last, closes the final segment.
func ChangePoints(t *Table) []time.Time {
	if len(t.Days) == 0 {
		return nil
	}

	points := []time.Time{t.Days[0]}
	for i := 1; i < len(t.Days); i++ {
		for _, cat := range t.Categories {
			row := t.Values[cat]
			if row[i] != row[i-1] {
				points = append(points, t.Days[i])
				break
			}
		}
	}
	return append(points, t.Days[len(t.Days)-1].AddDate(0, 0, 1))
}

// SegmentsFrom turns consecutive boundaries into inclusive ranges.
func SegmentsFrom(boundaries []time.Time) []Segment {
	if len(boundaries) < 2 {
		return nil
	}
	segments := make([]Segment, 0, len(boundaries)-1)
	for i := 0; i < len(boundaries)-1; i++ {
		segments = append(segments, Segment{
			From: boundaries[i],
			To:   boundaries[i+1].AddDate(0, 0, -1),
		})
	}
	return segments
}
