package curated

import (
	"context"
	"sort"
	"time"

	"github.com/samlafell/mlbcore/pkg/models"
)

// SteamDetector implements spec.md §4.5's steam rule: within a short
// window, a supermajority of active sportsbooks for one (game, market)
// move the same direction by at least one tick.
type SteamDetector struct {
	BookPctThreshold float64
	Window           time.Duration
}

// NewSteamDetector builds a SteamDetector from the config.PipelineConfig
// values SPEC_FULL.md §12 adds (steam_book_pct_threshold, steam_window_s),
// falling back to spec.md §4.5's stated 70%/5-minute defaults when unset.
func NewSteamDetector(bookPctThreshold float64, window time.Duration) *SteamDetector {
	if bookPctThreshold <= 0 {
		bookPctThreshold = 0.70
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &SteamDetector{BookPctThreshold: bookPctThreshold, Window: window}
}

type moveEvent struct {
	sportsbookID int64
	ts           time.Time
	direction    int
	seqIndex     int
}

// Detect takes one (game, market)'s quotes grouped by sportsbook, each
// already ordered per sortMovementOrder, and returns the same grouping
// with Steam flagged wherever BookPctThreshold of all active books moved
// the same direction within Window of each other.
func (d *SteamDetector) Detect(ctx context.Context, bySportsbook map[int64][]models.BettingLine) map[int64][]models.BettingLine {
	totalBooks := len(bySportsbook)
	out := make(map[int64][]models.BettingLine, totalBooks)
	for id, seq := range bySportsbook {
		cp := make([]models.BettingLine, len(seq))
		copy(cp, seq)
		out[id] = cp
	}
	if totalBooks < 2 {
		// Steam is a cross-book consensus signal; a single active book has
		// nothing to move in consensus with.
		return out
	}

	var events []moveEvent
	for bookID, seq := range bySportsbook {
		for i := 1; i < len(seq); i++ {
			prevHome, _, ok1 := sidePrices(seq[i-1])
			curHome, _, ok2 := sidePrices(seq[i])
			if !ok1 || !ok2 {
				continue
			}
			delta := curHome - prevHome
			if delta == 0 {
				continue
			}
			dir := 1
			if delta < 0 {
				dir = -1
			}
			events = append(events, moveEvent{sportsbookID: bookID, ts: seq[i].OddsTimestamp, direction: dir, seqIndex: i})
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ts.Before(events[j].ts) })

	// For each move, count distinct books that moved the same direction
	// within Window of it (in either time direction): a steam move is one
	// of a cluster, not necessarily the cluster's first or last member.
	// Each side of the comparison gets Window/2 so the full span between
	// any two matched events never exceeds Window (spec.md §4.5: "within 5
	// minutes", not within 5 minutes on each side).
	flagged := make(map[int64]map[int]bool)
	for _, ev := range events {
		windowStart := ev.ts.Add(-d.Window / 2)
		windowEnd := ev.ts.Add(d.Window / 2)
		matchedBooks := make(map[int64]bool)
		for _, other := range events {
			if other.ts.Before(windowStart) || other.ts.After(windowEnd) {
				continue
			}
			if other.direction == ev.direction {
				matchedBooks[other.sportsbookID] = true
			}
		}
		if float64(len(matchedBooks))/float64(totalBooks) >= d.BookPctThreshold {
			if flagged[ev.sportsbookID] == nil {
				flagged[ev.sportsbookID] = make(map[int]bool)
			}
			flagged[ev.sportsbookID][ev.seqIndex] = true
		}
	}

	for bookID, idxs := range flagged {
		for idx := range idxs {
			out[bookID][idx].Steam = true
		}
	}
	return out
}
