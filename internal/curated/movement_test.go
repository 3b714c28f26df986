package curated

import (
	"context"
	"testing"
	"time"

	"github.com/samlafell/mlbcore/pkg/models"
)

func ml(home, away int, ts time.Time) models.BettingLine {
	return models.BettingLine{
		Market:        models.MarketMoneyline,
		Moneyline:     &models.MoneylineFields{HomePrice: home, AwayPrice: away},
		OddsTimestamp: ts,
	}
}

func TestSidePrices_Moneyline(t *testing.T) {
	line := ml(-150, 130, time.Now())
	home, away, ok := sidePrices(line)
	if !ok || home != -150 || away != 130 {
		t.Errorf("sidePrices = %d,%d,%v", home, away, ok)
	}
}

func TestMajoritySide_PicksHigherBetsPct(t *testing.T) {
	line := models.BettingLine{
		HomeSplit: models.VolumeSplit{BetsPct: pct(65)},
		AwaySplit: models.VolumeSplit{BetsPct: pct(35)},
	}
	side, ok := majoritySide(line)
	if !ok || side != "home" {
		t.Errorf("majoritySide = %q,%v, want home,true", side, ok)
	}
}

func TestMajoritySide_TiedIsNoMajority(t *testing.T) {
	line := models.BettingLine{
		HomeSplit: models.VolumeSplit{BetsPct: pct(50)},
		AwaySplit: models.VolumeSplit{BetsPct: pct(50)},
	}
	_, ok := majoritySide(line)
	if ok {
		t.Error("expected no majority on a 50/50 split")
	}
}

func TestRLMDetector_FlagsPriceShortenedAgainstMajority(t *testing.T) {
	base := time.Date(2026, 7, 31, 18, 0, 0, 0, time.UTC)
	prev := ml(-150, 130, base)
	prev.HomeSplit = models.VolumeSplit{BetsPct: pct(70)}
	prev.AwaySplit = models.VolumeSplit{BetsPct: pct(30)}
	cur := ml(-170, 140, base.Add(20*time.Minute)) // home price shortened -150 -> -170

	d := NewRLMDetector()
	out := d.Detect(context.Background(), []models.BettingLine{prev, cur})

	if out[1].RLM != true {
		t.Error("expected RLM flagged on the second quote")
	}
}

func TestRLMDetector_NoFlagOutsideWindow(t *testing.T) {
	base := time.Date(2026, 7, 31, 18, 0, 0, 0, time.UTC)
	prev := ml(-150, 130, base)
	prev.HomeSplit = models.VolumeSplit{BetsPct: pct(70)}
	prev.AwaySplit = models.VolumeSplit{BetsPct: pct(30)}
	cur := ml(-170, 140, base.Add(90*time.Minute)) // outside the 60-min window

	d := NewRLMDetector()
	out := d.Detect(context.Background(), []models.BettingLine{prev, cur})

	if out[1].RLM {
		t.Error("expected no RLM flag outside the rolling window")
	}
}

func TestRLMDetector_NoFlagWhenPriceMovesWithMajority(t *testing.T) {
	base := time.Date(2026, 7, 31, 18, 0, 0, 0, time.UTC)
	prev := ml(-150, 130, base)
	prev.HomeSplit = models.VolumeSplit{BetsPct: pct(70)}
	prev.AwaySplit = models.VolumeSplit{BetsPct: pct(30)}
	cur := ml(-140, 120, base.Add(10*time.Minute)) // home price lengthened, in majority's favor

	d := NewRLMDetector()
	out := d.Detect(context.Background(), []models.BettingLine{prev, cur})

	if out[1].RLM {
		t.Error("expected no RLM flag when price moves with the majority side")
	}
}

func TestSortMovementOrder(t *testing.T) {
	t0 := time.Date(2026, 7, 31, 18, 0, 0, 0, time.UTC)
	a := models.BettingLine{OddsTimestamp: t0, SourceReliabilityScore: 0.5, Source: "a"}
	b := models.BettingLine{OddsTimestamp: t0, SourceReliabilityScore: 0.9, Source: "b"}
	c := models.BettingLine{OddsTimestamp: t0.Add(-time.Minute), Source: "c"}

	lines := []models.BettingLine{a, b, c}
	sortMovementOrder(lines)

	if lines[0].Source != "c" {
		t.Errorf("lines[0] = %q, want c (earliest timestamp)", lines[0].Source)
	}
	if lines[1].Source != "b" {
		t.Errorf("lines[1] = %q, want b (higher reliability on tied timestamp)", lines[1].Source)
	}
}
