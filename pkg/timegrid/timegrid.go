// Package timegrid lays out the time-bounded events of a single day onto a
// vertical time grid. Overlapping events are assigned to side-by-side lanes
// so a day-schedule view can render them without visual collision.
package timegrid

import (
	"fmt"
	"sort"
	"time"
)

const (
	// MinDurationMinutes is the floor applied to event durations. Zero,
	// negative, or missing durations are rendered at this length so the
	// event stays visible and clickable.
	MinDurationMinutes = 5

	// TickIntervalMinutes is the spacing of grid lines and axis labels.
	TickIntervalMinutes = 30

	// Default visible window: 08:00 to 18:00.
	DefaultWindowStartMinutes = 8 * 60
	DefaultWindowEndMinutes   = 18 * 60

	// Absolute outer bounds: the axis never expands past 06:00 or 22:00.
	OuterBoundStartMinutes = 6 * 60
	OuterBoundEndMinutes   = 22 * 60
)

// Event is one entry on the day schedule. Start carries both date and
// time-of-day; DurationMinutes may be zero or negative and is clamped to
// MinDurationMinutes during layout.
type Event struct {
	ID              string    `json:"id"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
}

// Axis is the visible time window, in minutes since midnight of the
// reference day.
type Axis struct {
	StartMinutes int `json:"start_minutes"`
	EndMinutes   int `json:"end_minutes"`
}

// Contains reports whether the half-open interval [start, end) lies inside
// the axis window. Arguments are minutes since midnight.
func (a Axis) Contains(start, end int) bool {
	return start >= a.StartMinutes && end <= a.EndMinutes
}

// Tick is a single 30-minute grid marker.
type Tick struct {
	Minutes int    `json:"minutes"`
	Label   string `json:"label"`
}

// Placement is the computed position of one event: the lane it occupies and
// its interval expressed as minutes since the axis start boundary.
type Placement struct {
	ID                 string `json:"id"`
	Lane               int    `json:"lane"`
	StartOffsetMinutes int    `json:"start_offset_minutes"`
	EndOffsetMinutes   int    `json:"end_offset_minutes"`
}

// PixelTop returns the vertical pixel position of the event's top edge.
func (p Placement) PixelTop(pixelsPerMinute float64) float64 {
	return float64(p.StartOffsetMinutes) * pixelsPerMinute
}

// PixelHeight returns the event's rendered height, never below minHeight.
func (p Placement) PixelHeight(pixelsPerMinute, minHeight float64) float64 {
	h := float64(p.EndOffsetMinutes-p.StartOffsetMinutes) * pixelsPerMinute
	if h < minHeight {
		return minHeight
	}
	return h
}

// Layout is the full result of laying out one day's events.
type Layout struct {
	Axis       Axis        `json:"axis"`
	LaneCount  int         `json:"lane_count"`
	Ticks      []Tick      `json:"ticks"`
	Placements []Placement `json:"placements"`
}

// LaneWidthPercent returns the horizontal width of one lane as a percentage
// of the grid width.
func (l Layout) LaneWidthPercent() float64 {
	return 100 / float64(l.LaneCount)
}

// LaneOffsetPercent returns the horizontal offset of a lane as a percentage
// of the grid width.
func (l Layout) LaneOffsetPercent(lane int) float64 {
	return float64(lane) * l.LaneWidthPercent()
}

// BuildDayLayout computes the axis window, tick marks, and lane placements
// for the given events on the day containing ref. It is a pure function:
// identical input always yields an identical layout, and it cannot fail.
// An empty event list yields the default window and a single lane.
func BuildDayLayout(ref time.Time, events []Event) Layout {
	midnight := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())

	type span struct {
		index int // position in the input slice
		start int // minutes since midnight
		end   int
	}

	spans := make([]span, len(events))
	for i, ev := range events {
		dur := ev.DurationMinutes
		if dur < MinDurationMinutes {
			dur = MinDurationMinutes
		}
		start := int(ev.Start.Sub(midnight) / time.Minute)
		spans[i] = span{index: i, start: start, end: start + dur}
	}

	axis := Axis{StartMinutes: DefaultWindowStartMinutes, EndMinutes: DefaultWindowEndMinutes}
	for _, sp := range spans {
		if s := floorToTick(sp.start); s < axis.StartMinutes {
			axis.StartMinutes = s
		}
		if e := ceilToTick(sp.end); e > axis.EndMinutes {
			axis.EndMinutes = e
		}
	}
	if axis.StartMinutes < OuterBoundStartMinutes {
		axis.StartMinutes = OuterBoundStartMinutes
	}
	if axis.EndMinutes > OuterBoundEndMinutes {
		axis.EndMinutes = OuterBoundEndMinutes
	}

	// Greedy first-fit lane assignment. Processing strictly by start time
	// makes the greedy result minimal; ties keep input order so re-runs of
	// equal input produce the same assignment.
	sorted := make([]span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	lanes := make(map[int]int, len(events)) // input index -> lane
	var laneEnds []int
	for _, sp := range sorted {
		placed := false
		for l, end := range laneEnds {
			if end <= sp.start {
				laneEnds[l] = sp.end
				lanes[sp.index] = l
				placed = true
				break
			}
		}
		if !placed {
			laneEnds = append(laneEnds, sp.end)
			lanes[sp.index] = len(laneEnds) - 1
		}
	}

	laneCount := len(laneEnds)
	if laneCount < 1 {
		laneCount = 1
	}

	placements := make([]Placement, len(events))
	for i, sp := range spans {
		placements[i] = Placement{
			ID:                 events[i].ID,
			Lane:               lanes[i],
			StartOffsetMinutes: sp.start - axis.StartMinutes,
			EndOffsetMinutes:   sp.end - axis.StartMinutes,
		}
	}

	return Layout{
		Axis:       axis,
		LaneCount:  laneCount,
		Ticks:      buildTicks(axis),
		Placements: placements,
	}
}

func buildTicks(a Axis) []Tick {
	var ticks []Tick
	for m := a.StartMinutes; m <= a.EndMinutes; m += TickIntervalMinutes {
		ticks = append(ticks, Tick{Minutes: m, Label: formatMinutes(m)})
	}
	return ticks
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func floorToTick(m int) int {
	if m >= 0 {
		return m - m%TickIntervalMinutes
	}
	return -ceilToTick(-m)
}

func ceilToTick(m int) int {
	if m%TickIntervalMinutes == 0 {
		return m
	}
	if m >= 0 {
		return m + TickIntervalMinutes - m%TickIntervalMinutes
	}
	return -floorToTick(-m)
}
