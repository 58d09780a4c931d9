package booking

import (
	"time"

	"chelmassage/models"
)

// StrideMinutes is the step between candidate start times inside an open window.
const StrideMinutes = 15

// ComputeAvailableStarts enumerates start times at a fixed stride from each
// open window's start. A candidate survives when [start, start+totalBlock)
// fits inside its window and overlaps no busy window. Results are emitted
// per window in stride order; overlapping open windows may yield duplicates.
func ComputeAvailableStarts(req models.SlotRequest, openWindows, busyWindows []models.TimeWindow) []time.Time {
	totalBlock := req.TotalBlock()
	stride := StrideMinutes * time.Minute

	starts := []time.Time{}
	for _, window := range openWindows {
		for candidate := window.Start; candidate.Before(window.End); candidate = candidate.Add(stride) {
			slot := models.TimeWindow{Start: candidate, End: candidate.Add(totalBlock)}
			// Later candidates only end later, so nothing else in this window fits.
			if slot.End.After(window.End) {
				break
			}
			if overlapsAny(slot, busyWindows) {
				continue
			}
			starts = append(starts, candidate)
		}
	}
	return starts
}

func overlapsAny(w models.TimeWindow, busy []models.TimeWindow) bool {
	for _, b := range busy {
		if w.Overlaps(b) {
			return true
		}
	}
	return false
}

// FormatStarts renders start times as RFC 3339, keeping each instant's offset.
func FormatStarts(starts []time.Time) []string {
	out := make([]string, 0, len(starts))
	for _, s := range starts {
		out = append(out, s.Format(time.RFC3339))
	}
	return out
}
