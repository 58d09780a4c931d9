package models

import (
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2025, 6, 1, h, m, 0, 0, time.UTC)
}

func TestTimeWindowOverlapsHalfOpen(t *testing.T) {
	busy := TimeWindow{Start: at(10, 0), End: at(10, 30)}

	cases := []struct {
		name string
		w    TimeWindow
		want bool
	}{
		{"ends at busy start", TimeWindow{Start: at(9, 0), End: at(10, 0)}, false},
		{"starts at busy end", TimeWindow{Start: at(10, 30), End: at(11, 30)}, false},
		{"straddles start", TimeWindow{Start: at(9, 15), End: at(10, 15)}, true},
		{"inside", TimeWindow{Start: at(10, 5), End: at(10, 10)}, true},
		{"covers", TimeWindow{Start: at(9, 0), End: at(11, 0)}, true},
		{"identical", busy, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.w.Overlaps(busy); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
			if got := busy.Overlaps(tc.w); got != tc.want {
				t.Fatalf("Overlaps not symmetric: %v", got)
			}
		})
	}
}

func TestNewTimeWindowRejectsEmpty(t *testing.T) {
	if _, err := NewTimeWindow(at(10, 0), at(10, 0)); err == nil {
		t.Fatalf("expected error for zero-length window")
	}
	if _, err := NewTimeWindow(at(11, 0), at(10, 0)); err == nil {
		t.Fatalf("expected error for reversed window")
	}
}

func TestCalendarEventLabel(t *testing.T) {
	for _, s := range []string{"open for bookings", "Open For Bookings", "OPEN FOR BOOKINGS"} {
		if !(CalendarEvent{Summary: s}).IsOpenForBookings() {
			t.Fatalf("%q should be open", s)
		}
	}
	for _, s := range []string{"", "open for bookings!", " open for bookings", "Deep tissue for Ann"} {
		if (CalendarEvent{Summary: s}).IsOpenForBookings() {
			t.Fatalf("%q should be busy", s)
		}
	}
}

func TestCalendarEventWindowKeepsOffset(t *testing.T) {
	ev := CalendarEvent{
		ID:    "e1",
		Start: EventTime{DateTime: "2025-06-01T09:00:00-04:00"},
		End:   EventTime{DateTime: "2025-06-01T12:00:00-04:00"},
	}
	w, err := ev.Window()
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if got := w.Start.Format(time.RFC3339); got != "2025-06-01T09:00:00-04:00" {
		t.Fatalf("start = %s", got)
	}
	if w.Duration() != 3*time.Hour {
		t.Fatalf("duration = %v", w.Duration())
	}
}

func TestCalendarEventWindowAllDay(t *testing.T) {
	ev := CalendarEvent{ID: "e2", Start: EventTime{Date: "2025-06-01"}, End: EventTime{Date: "2025-06-02"}}
	if _, err := ev.Window(); err == nil {
		t.Fatalf("expected error for all-day event")
	}
}
