package forecast

import "time"

// maxGap is the largest spacing between consecutive qualifying entries that
// still counts as one contiguous window. It tolerates a single missing or
// disqualified hour in an hourly sequence.
const maxGap = 2 * time.Hour

// FindWindows scans hourly forecast entries for maximal contiguous runs where
// every entry is night and scores at least minScore, with no gap over two
// hours. A run is emitted only when it has at least minDurationHours entries.
// Re-running on the same input yields identical windows.
func FindWindows(entries []Entry, minScore float64, minDurationHours int) []Window {
	qualifying := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsNight && e.Score.Total >= minScore {
			qualifying = append(qualifying, e)
		}
	}

	var windows []Window
	var run []Entry

	flush := func() {
		if len(run) >= minDurationHours {
			windows = append(windows, newWindow(run))
		}
		run = nil
	}

	for _, e := range qualifying {
		if len(run) > 0 && e.Timestamp.Sub(run[len(run)-1].Timestamp) > maxGap {
			flush()
		}
		run = append(run, e)
	}
	flush()

	return windows
}

// BestWindow returns the window with the highest average score, or nil when
// no window qualifies. Ties go to the earlier window.
func BestWindow(entries []Entry, minScore float64, minDurationHours int) *Window {
	windows := FindWindows(entries, minScore, minDurationHours)
	if len(windows) == 0 {
		return nil
	}

	best := &windows[0]
	for i := 1; i < len(windows); i++ {
		if windows[i].AverageScore > best.AverageScore {
			best = &windows[i]
		}
	}
	return best
}

// newWindow builds a Window from a non-empty contiguous run.
func newWindow(run []Entry) Window {
	entries := make([]Entry, len(run))
	copy(entries, run)

	sum := 0.0
	peakIdx := 0
	for i, e := range entries {
		sum += e.Score.Total
		if e.Score.Total > entries[peakIdx].Score.Total {
			peakIdx = i
		}
	}

	return Window{
		Start:        entries[0].Timestamp,
		End:          entries[len(entries)-1].Timestamp,
		AverageScore: sum / float64(len(entries)),
		PeakScore:    entries[peakIdx].Score.Total,
		PeakTime:     entries[peakIdx].Timestamp,
		Entries:      entries,
	}
}
