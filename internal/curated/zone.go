// Package curated implements the curated zone of spec.md §4.5: cross-source
// upsert onto one row per (game, sportsbook, market, odds_timestamp), plus
// sharp-action, reverse-line-movement, and steam detection. Grounded on
// XavierBriggs-Services/edge-detector/internal/detector's per-algorithm
// Detect(ctx, ...) shape (ScalpDetector, EdgeDetector), generalized from
// arbitrage/edge math to the percentage-divergence and price-tick rules
// spec.md §4.5 specifies.
package curated

import (
	"context"
	"time"

	"github.com/samlafell/mlbcore/pkg/models"
)

// Metrics summarizes one Process call.
type Metrics struct {
	Upserted     int
	SharpFlagged int
	RLMFlagged   int
	SteamFlagged int
}

// Zone owns curated-stage deduplication and flag detection.
type Zone struct {
	sharp *SharpDetector
	rlm   *RLMDetector
	steam *SteamDetector
	clv   *CLVDetector
}

// New builds a Zone. steamBookPctThreshold/steamWindow come from
// config.PipelineConfig; zero values fall back to spec.md §4.5's defaults.
func New(steamBookPctThreshold float64, steamWindow time.Duration) *Zone {
	return &Zone{
		sharp: NewSharpDetector(),
		rlm:   NewRLMDetector(),
		steam: NewSteamDetector(steamBookPctThreshold, steamWindow),
		clv:   NewCLVDetector(),
	}
}

// Process runs the full curated pipeline over one batch of staging-accepted
// BettingLines: upsert dedup, sharp-action/public_fade tagging, RLM
// detection per (game, sportsbook, market) movement sequence, and steam
// detection per (game, market) across sportsbooks. Never writes back to
// raw/staging; the orchestrator persists the returned lines.
func (z *Zone) Process(ctx context.Context, candidates []models.BettingLine) ([]models.BettingLine, Metrics) {
	lines, order := upsertByKey(candidates)

	for i := range lines {
		lines[i] = z.sharp.Detect(lines[i])
	}

	z.detectRLM(ctx, lines)
	z.detectSteam(ctx, lines)

	metrics := Metrics{Upserted: len(order)}
	for _, l := range lines {
		if l.SharpActionTag != "" && l.SharpActionTag != models.SharpNone {
			metrics.SharpFlagged++
		}
		if l.RLM {
			metrics.RLMFlagged++
		}
		if l.Steam {
			metrics.SteamFlagged++
		}
	}
	return lines, metrics
}

// upsertByKey resolves all candidates sharing an IdempotencyKey down to one
// winner per spec.md §4.5's upsert semantics, preserving first-seen order.
func upsertByKey(candidates []models.BettingLine) ([]models.BettingLine, []string) {
	byKey := make(map[string]models.BettingLine, len(candidates))
	order := make([]string, 0, len(candidates))
	for _, c := range candidates {
		key := c.IdempotencyKey()
		if existing, ok := byKey[key]; ok {
			byKey[key] = Upsert(existing, c)
			continue
		}
		byKey[key] = c
		order = append(order, key)
	}
	lines := make([]models.BettingLine, len(order))
	for i, key := range order {
		lines[i] = byKey[key]
	}
	return lines, order
}

// detectRLM groups lines by MovementKey (game, sportsbook, market), orders
// each group per spec.md §4.5's canonical ordering, and mutates lines in
// place with the RLM flag.
func (z *Zone) detectRLM(ctx context.Context, lines []models.BettingLine) {
	groups := make(map[string][]int)
	for i, l := range lines {
		groups[l.MovementKey()] = append(groups[l.MovementKey()], i)
	}
	for _, idxs := range groups {
		seq := extractSorted(lines, idxs)
		seq = z.rlm.Detect(ctx, seq)
		seq = z.clv.Detect(seq)
		writeBack(lines, idxs, seq)
	}
}

// detectSteam groups lines by (game, market) and, within each group, by
// sportsbook, then mutates lines in place with the Steam flag.
func (z *Zone) detectSteam(ctx context.Context, lines []models.BettingLine) {
	groups := make(map[string]map[int64][]int)
	for i, l := range lines {
		gmKey := l.CanonicalGameID + "|" + string(l.Market)
		if groups[gmKey] == nil {
			groups[gmKey] = make(map[int64][]int)
		}
		groups[gmKey][l.SportsbookID] = append(groups[gmKey][l.SportsbookID], i)
	}
	for _, bySportsbook := range groups {
		bookSeqs := make(map[int64][]models.BettingLine, len(bySportsbook))
		for sbID, idxs := range bySportsbook {
			bookSeqs[sbID] = extractSorted(lines, idxs)
		}
		steamed := z.steam.Detect(ctx, bookSeqs)
		for sbID, idxs := range bySportsbook {
			writeBack(lines, idxs, steamed[sbID])
		}
	}
}

// extractSorted sorts idxs in place by movement order and returns the
// corresponding lines as a fresh slice.
func extractSorted(lines []models.BettingLine, idxs []int) []models.BettingLine {
	seq := make([]models.BettingLine, len(idxs))
	for i, idx := range idxs {
		seq[i] = lines[idx]
	}
	sortMovementOrder(seq)

	// idxs must track the same reordering so writeBack lines up.
	byKey := make(map[string]int, len(idxs))
	for _, idx := range idxs {
		byKey[lines[idx].IdempotencyKey()] = idx
	}
	for i, l := range seq {
		idxs[i] = byKey[l.IdempotencyKey()]
	}
	return seq
}

// writeBack copies seq's (possibly flag-mutated) lines back to their
// original positions in lines.
func writeBack(lines []models.BettingLine, idxs []int, seq []models.BettingLine) {
	for i, idx := range idxs {
		lines[idx] = seq[i]
	}
}
