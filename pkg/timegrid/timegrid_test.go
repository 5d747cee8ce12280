package timegrid

import (
	"math/rand"
	"reflect"
	"testing"
	"time"
)

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func TestBuildDayLayout_Empty(t *testing.T) {
	l := BuildDayLayout(day, nil)

	if l.Axis.StartMinutes != DefaultWindowStartMinutes {
		t.Errorf("axis start = %d, want %d", l.Axis.StartMinutes, DefaultWindowStartMinutes)
	}
	if l.Axis.EndMinutes != DefaultWindowEndMinutes {
		t.Errorf("axis end = %d, want %d", l.Axis.EndMinutes, DefaultWindowEndMinutes)
	}
	if l.LaneCount != 1 {
		t.Errorf("lane count = %d, want 1", l.LaneCount)
	}
	if len(l.Placements) != 0 {
		t.Errorf("expected no placements, got %d", len(l.Placements))
	}
}

func TestBuildDayLayout_OverlappingPairGetsDistinctLanes(t *testing.T) {
	events := []Event{
		{ID: "a", Start: at(9, 0), DurationMinutes: 30},
		{ID: "b", Start: at(9, 15), DurationMinutes: 30},
	}
	l := BuildDayLayout(day, events)

	if l.LaneCount != 2 {
		t.Fatalf("lane count = %d, want 2", l.LaneCount)
	}
	if l.Placements[0].Lane != 0 || l.Placements[1].Lane != 1 {
		t.Errorf("lanes = %d,%d, want 0,1", l.Placements[0].Lane, l.Placements[1].Lane)
	}
}

func TestBuildDayLayout_BackToBackShareLane(t *testing.T) {
	events := []Event{
		{ID: "a", Start: at(9, 0), DurationMinutes: 30},
		{ID: "b", Start: at(9, 30), DurationMinutes: 30},
	}
	l := BuildDayLayout(day, events)

	if l.LaneCount != 1 {
		t.Fatalf("lane count = %d, want 1", l.LaneCount)
	}
	if l.Placements[0].Lane != 0 || l.Placements[1].Lane != 0 {
		t.Errorf("lanes = %d,%d, want 0,0", l.Placements[0].Lane, l.Placements[1].Lane)
	}
}

func TestBuildDayLayout_TripleOverlap(t *testing.T) {
	events := []Event{
		{ID: "a", Start: at(9, 45), DurationMinutes: 30},
		{ID: "b", Start: at(9, 50), DurationMinutes: 60},
		{ID: "c", Start: at(9, 55), DurationMinutes: 15},
	}
	l := BuildDayLayout(day, events)

	if l.LaneCount != 3 {
		t.Errorf("lane count = %d, want 3", l.LaneCount)
	}
}

func TestBuildDayLayout_AxisExpandsForEarlyEvent(t *testing.T) {
	events := []Event{{ID: "a", Start: at(7, 0), DurationMinutes: 30}}
	l := BuildDayLayout(day, events)

	if l.Axis.StartMinutes != 7*60 {
		t.Errorf("axis start = %d, want %d", l.Axis.StartMinutes, 7*60)
	}
	if l.Axis.EndMinutes != DefaultWindowEndMinutes {
		t.Errorf("axis end = %d, want default %d", l.Axis.EndMinutes, DefaultWindowEndMinutes)
	}
}

func TestBuildDayLayout_AxisRoundsOutward(t *testing.T) {
	events := []Event{{ID: "a", Start: at(7, 10), DurationMinutes: 35}}
	l := BuildDayLayout(day, events)

	// 07:10 floors to 07:00; end 07:45 is inside the default window.
	if l.Axis.StartMinutes != 7*60 {
		t.Errorf("axis start = %d, want %d", l.Axis.StartMinutes, 7*60)
	}

	events = []Event{{ID: "b", Start: at(18, 5), DurationMinutes: 40}}
	l = BuildDayLayout(day, events)
	// end 18:45 ceils to 19:00
	if l.Axis.EndMinutes != 19*60 {
		t.Errorf("axis end = %d, want %d", l.Axis.EndMinutes, 19*60)
	}
}

func TestBuildDayLayout_AxisClampedToOuterBounds(t *testing.T) {
	events := []Event{
		{ID: "a", Start: at(4, 0), DurationMinutes: 30},
		{ID: "b", Start: at(22, 30), DurationMinutes: 60},
	}
	l := BuildDayLayout(day, events)

	if l.Axis.StartMinutes != OuterBoundStartMinutes {
		t.Errorf("axis start = %d, want outer bound %d", l.Axis.StartMinutes, OuterBoundStartMinutes)
	}
	if l.Axis.EndMinutes != OuterBoundEndMinutes {
		t.Errorf("axis end = %d, want outer bound %d", l.Axis.EndMinutes, OuterBoundEndMinutes)
	}
}

func TestBuildDayLayout_DurationFloor(t *testing.T) {
	for _, dur := range []int{0, -15} {
		events := []Event{{ID: "a", Start: at(10, 0), DurationMinutes: dur}}
		l := BuildDayLayout(day, events)

		p := l.Placements[0]
		if p.EndOffsetMinutes-p.StartOffsetMinutes != MinDurationMinutes {
			t.Errorf("duration %d: rendered length = %d, want %d",
				dur, p.EndOffsetMinutes-p.StartOffsetMinutes, MinDurationMinutes)
		}
	}
}

func TestBuildDayLayout_OffsetsRelativeToAxisStart(t *testing.T) {
	events := []Event{{ID: "a", Start: at(10, 0), DurationMinutes: 45}}
	l := BuildDayLayout(day, events)

	p := l.Placements[0]
	if p.StartOffsetMinutes != 10*60-l.Axis.StartMinutes {
		t.Errorf("start offset = %d, want %d", p.StartOffsetMinutes, 10*60-l.Axis.StartMinutes)
	}
	if p.EndOffsetMinutes != p.StartOffsetMinutes+45 {
		t.Errorf("end offset = %d, want %d", p.EndOffsetMinutes, p.StartOffsetMinutes+45)
	}
}

func TestBuildDayLayout_Ticks(t *testing.T) {
	l := BuildDayLayout(day, nil)

	// 08:00..18:00 inclusive at 30-minute spacing is 21 ticks.
	if len(l.Ticks) != 21 {
		t.Fatalf("tick count = %d, want 21", len(l.Ticks))
	}
	if l.Ticks[0].Label != "08:00" {
		t.Errorf("first tick label = %q, want 08:00", l.Ticks[0].Label)
	}
	if l.Ticks[1].Label != "08:30" {
		t.Errorf("second tick label = %q, want 08:30", l.Ticks[1].Label)
	}
	if l.Ticks[20].Label != "18:00" {
		t.Errorf("last tick label = %q, want 18:00", l.Ticks[20].Label)
	}
}

func TestBuildDayLayout_Deterministic(t *testing.T) {
	events := []Event{
		{ID: "a", Start: at(9, 0), DurationMinutes: 60},
		{ID: "b", Start: at(9, 0), DurationMinutes: 30},
		{ID: "c", Start: at(9, 30), DurationMinutes: 30},
	}

	first := BuildDayLayout(day, events)
	for i := 0; i < 50; i++ {
		if got := BuildDayLayout(day, events); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs from first run", i)
		}
	}
}

func TestBuildDayLayout_EqualStartsKeepInputOrder(t *testing.T) {
	events := []Event{
		{ID: "a", Start: at(9, 0), DurationMinutes: 30},
		{ID: "b", Start: at(9, 0), DurationMinutes: 30},
	}
	l := BuildDayLayout(day, events)

	if l.Placements[0].Lane != 0 {
		t.Errorf("first input event lane = %d, want 0", l.Placements[0].Lane)
	}
	if l.Placements[1].Lane != 1 {
		t.Errorf("second input event lane = %d, want 1", l.Placements[1].Lane)
	}
}

func TestBuildDayLayout_PlacementsKeepInputOrder(t *testing.T) {
	events := []Event{
		{ID: "late", Start: at(15, 0), DurationMinutes: 30},
		{ID: "early", Start: at(9, 0), DurationMinutes: 30},
	}
	l := BuildDayLayout(day, events)

	if l.Placements[0].ID != "late" || l.Placements[1].ID != "early" {
		t.Errorf("placement order = %s,%s, want late,early", l.Placements[0].ID, l.Placements[1].ID)
	}
}

// TestBuildDayLayout_Randomized checks the structural invariants against
// random interval sets: no two events in the same lane overlap, every
// placement lies inside the axis, and the lane count equals the maximum
// number of simultaneously overlapping events.
func TestBuildDayLayout_Randomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(20) + 1
		events := make([]Event, n)
		for i := range events {
			startMin := 6*60 + rng.Intn(15*60)
			events[i] = Event{
				ID:              string(rune('a' + i%26)),
				Start:           day.Add(time.Duration(startMin) * time.Minute),
				DurationMinutes: rng.Intn(120) - 10, // includes invalid durations
			}
		}

		l := BuildDayLayout(day, events)

		// No same-lane overlap.
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				a, b := l.Placements[i], l.Placements[j]
				if a.Lane != b.Lane {
					continue
				}
				if a.StartOffsetMinutes < b.EndOffsetMinutes && b.StartOffsetMinutes < a.EndOffsetMinutes {
					t.Fatalf("trial %d: events %d and %d overlap in lane %d", trial, i, j, a.Lane)
				}
			}
		}

		// Containment after axis expansion. The axis is clamped to the
		// outer bounds, so only intervals inside those bounds must fit.
		for i, p := range l.Placements {
			start := p.StartOffsetMinutes + l.Axis.StartMinutes
			end := p.EndOffsetMinutes + l.Axis.StartMinutes
			if start >= OuterBoundStartMinutes && end <= OuterBoundEndMinutes && !l.Axis.Contains(start, end) {
				t.Fatalf("trial %d: event %d [%d,%d) outside axis [%d,%d]",
					trial, i, start, end, l.Axis.StartMinutes, l.Axis.EndMinutes)
			}
		}

		// Lane minimality: lane count must equal the maximum simultaneous
		// overlap (the interval-graph chromatic number).
		if got, want := l.LaneCount, maxSimultaneous(l.Placements); got != want {
			t.Fatalf("trial %d: lane count = %d, want %d", trial, got, want)
		}
	}
}

// maxSimultaneous computes the maximum number of intervals covering any
// single instant via a sweep over start/end boundaries.
func maxSimultaneous(ps []Placement) int {
	type boundary struct {
		at    int
		delta int
	}
	var bs []boundary
	for _, p := range ps {
		bs = append(bs, boundary{p.StartOffsetMinutes, 1}, boundary{p.EndOffsetMinutes, -1})
	}
	// Ends sort before starts at the same instant: [s,e) intervals meeting
	// at a point do not overlap.
	for i := range bs {
		for j := i + 1; j < len(bs); j++ {
			if bs[j].at < bs[i].at || (bs[j].at == bs[i].at && bs[j].delta < bs[i].delta) {
				bs[i], bs[j] = bs[j], bs[i]
			}
		}
	}
	max, cur := 1, 0
	for _, b := range bs {
		cur += b.delta
		if cur > max {
			max = cur
		}
	}
	return max
}

func TestPlacementPixelHelpers(t *testing.T) {
	p := Placement{StartOffsetMinutes: 60, EndOffsetMinutes: 65}

	if got := p.PixelTop(2); got != 120 {
		t.Errorf("PixelTop = %v, want 120", got)
	}
	if got := p.PixelHeight(2, 0); got != 10 {
		t.Errorf("PixelHeight = %v, want 10", got)
	}
	// Min height floor keeps short events clickable.
	if got := p.PixelHeight(2, 24); got != 24 {
		t.Errorf("PixelHeight with floor = %v, want 24", got)
	}
}

func TestLayoutLaneGeometry(t *testing.T) {
	l := Layout{LaneCount: 4}

	if got := l.LaneWidthPercent(); got != 25 {
		t.Errorf("LaneWidthPercent = %v, want 25", got)
	}
	if got := l.LaneOffsetPercent(2); got != 50 {
		t.Errorf("LaneOffsetPercent(2) = %v, want 50", got)
	}
}
