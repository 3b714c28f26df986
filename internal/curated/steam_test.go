package curated

import (
	"context"
	"testing"
	"time"

	"github.com/samlafell/mlbcore/pkg/models"
)

func TestSteamDetector_FlagsSupermajorityMove(t *testing.T) {
	base := time.Date(2026, 7, 31, 18, 0, 0, 0, time.UTC)
	bySportsbook := map[int64][]models.BettingLine{
		1: {ml(-150, 130, base), ml(-160, 140, base.Add(1*time.Minute))},
		2: {ml(-150, 130, base), ml(-160, 140, base.Add(2*time.Minute))},
		3: {ml(-150, 130, base), ml(-160, 140, base.Add(2*time.Minute))},
		4: {ml(-150, 130, base), ml(-145, 125, base.Add(2*time.Minute))}, // lone dissenter
	}

	d := NewSteamDetector(0.70, 5*time.Minute)
	out := d.Detect(context.Background(), bySportsbook)

	for id := int64(1); id <= 3; id++ {
		if !out[id][1].Steam {
			t.Errorf("book %d: expected Steam flagged on the moved quote", id)
		}
	}
	if out[4][1].Steam {
		t.Error("book 4: dissenting direction should not be flagged steam")
	}
}

func TestSteamDetector_NoFlagBelowThreshold(t *testing.T) {
	base := time.Date(2026, 7, 31, 18, 0, 0, 0, time.UTC)
	bySportsbook := map[int64][]models.BettingLine{
		1: {ml(-150, 130, base), ml(-160, 140, base.Add(1*time.Minute))},
		2: {ml(-150, 130, base), ml(-140, 120, base.Add(1*time.Minute))},
		3: {ml(-150, 130, base), ml(-130, 110, base.Add(1*time.Minute))},
	}

	d := NewSteamDetector(0.70, 5*time.Minute)
	out := d.Detect(context.Background(), bySportsbook)

	for id, seq := range out {
		if seq[1].Steam {
			t.Errorf("book %d: expected no steam flag, no direction has a supermajority", id)
		}
	}
}

func TestSteamDetector_DoesNotFlagMovesBeyondFiveMinuteSpan(t *testing.T) {
	base := time.Date(2026, 7, 31, 18, 0, 0, 0, time.UTC)
	// The books move at 0, 6 and 12 minutes: consecutive moves are 6 minutes
	// apart, so no two moves fall inside spec.md §4.5's 5-minute window.
	bySportsbook := map[int64][]models.BettingLine{
		1: {ml(-150, 130, base), ml(-160, 140, base)},
		2: {ml(-150, 130, base), ml(-160, 140, base.Add(6*time.Minute))},
		3: {ml(-150, 130, base), ml(-160, 140, base.Add(12*time.Minute))},
	}

	d := NewSteamDetector(0.70, 5*time.Minute)
	out := d.Detect(context.Background(), bySportsbook)

	for id, seq := range out {
		if seq[1].Steam {
			t.Errorf("book %d: expected no steam flag, moves are 6 minutes apart (beyond the 5-minute window)", id)
		}
	}
}

func TestSteamDetector_EmptyInput(t *testing.T) {
	d := NewSteamDetector(0.70, 5*time.Minute)
	out := d.Detect(context.Background(), map[int64][]models.BettingLine{})
	if len(out) != 0 {
		t.Errorf("expected empty output, got %d entries", len(out))
	}
}
