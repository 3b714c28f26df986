package staging

import "testing"

func TestParserFor_KnownSources(t *testing.T) {
	for _, source := range []string{"primary_odds", "consensus_splits", "public_bet_pct", "odds_compare"} {
		if _, ok := ParserFor(source); !ok {
			t.Errorf("expected a parser registered for %q", source)
		}
	}
}

func TestParserFor_UnknownSource(t *testing.T) {
	if _, ok := ParserFor("nonexistent_source"); ok {
		t.Error("expected no parser for an unregistered source")
	}
}

func TestOddsParser_ExtractsAllThreeMarkets(t *testing.T) {
	parser, _ := ParserFor("primary_odds")
	payload := map[string]interface{}{
		"games": []interface{}{
			map[string]interface{}{
				"league_game_id":          "401",
				"date":                    "2026-07-31",
				"home_team":               "Boston Red Sox",
				"away_team":               "New York Yankees",
				"sportsbook_external_id":  "dk",
				"sportsbook_name":         "DraftKings",
				"odds_timestamp":          "2026-07-31T18:00:00Z",
				"moneyline": map[string]interface{}{"home_price": -150.0, "away_price": 130.0},
				"spread":    map[string]interface{}{"spread_line": -1.5, "home_price": -110.0, "away_price": -110.0},
				"total":     map[string]interface{}{"total_line": 8.5, "over_price": -105.0, "under_price": -115.0},
			},
		},
	}
	records, err := parser.Parse(payload)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 (one per market)", len(records))
	}
}

func TestSplitsParser_ExtractsVolumeFields(t *testing.T) {
	parser, _ := ParserFor("consensus_splits")
	payload := map[string]interface{}{
		"games": []interface{}{
			map[string]interface{}{
				"source":                 "consensus_splits",
				"league_game_id":         "401",
				"date":                   "2026-07-31",
				"home_team":              "Red Sox",
				"away_team":              "Yankees",
				"sportsbook_external_id": "dk",
				"market":                 "moneyline",
				"odds_timestamp":         "2026-07-31T18:00:00Z",
				"home_bets_pct":          62.0,
				"home_money_pct":         78.0,
				"away_bets_pct":          38.0,
				"away_money_pct":         22.0,
			},
		},
	}
	records, err := parser.Parse(payload)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].QuoteFields["home_bets_pct"] != 62.0 {
		t.Errorf("home_bets_pct = %v, want 62.0", records[0].QuoteFields["home_bets_pct"])
	}
}

func TestOddsCompareParser_ExtractsPerBookPerMarket(t *testing.T) {
	parser, ok := ParserFor("odds_compare")
	if !ok {
		t.Fatal("expected a parser registered for odds_compare")
	}
	payload := map[string]interface{}{
		"games": []interface{}{
			map[string]interface{}{
				"league_game_id": "401",
				"date":           "2026-07-31",
				"home_team":      "Boston Red Sox",
				"away_team":      "New York Yankees",
				"books": []interface{}{
					map[string]interface{}{
						"sportsbook_external_id": "dk",
						"sportsbook_name":        "DraftKings",
						"odds_timestamp":         "2026-07-31T18:00:00Z",
						"moneyline":              map[string]interface{}{"home_price": -150.0, "away_price": 130.0},
					},
					map[string]interface{}{
						"sportsbook_external_id": "fd",
						"sportsbook_name":        "FanDuel",
						"odds_timestamp":         "2026-07-31T18:00:00Z",
						"moneyline":              map[string]interface{}{"home_price": -145.0, "away_price": 125.0},
						"total":                  map[string]interface{}{"total_line": 8.5, "over_price": -110.0, "under_price": -110.0},
					},
				},
			},
		},
	}
	records, err := parser.Parse(payload)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3 (one moneyline each for dk/fd, one total for fd)", len(records))
	}
	for _, r := range records {
		if r.QuoteFields["home_team"] != "Boston Red Sox" {
			t.Errorf("QuoteFields[home_team] = %v, want game field merged in", r.QuoteFields["home_team"])
		}
	}
}

func TestParseTimestamp_RFC3339(t *testing.T) {
	got := parseTimestamp("2026-07-31T18:00:00Z")
	if got.IsZero() {
		t.Fatal("expected a parsed timestamp")
	}
}

func TestParseTimestamp_NoZoneInterpretedAsEastern(t *testing.T) {
	got := parseTimestamp("2026-07-31T18:00:00")
	if got.IsZero() {
		t.Fatal("expected a parsed timestamp")
	}
	if got.Hour() != 23 { // 18:00 EST (UTC-5) == 23:00 UTC
		t.Errorf("Hour() = %d, want 23 (18:00 EST converted to UTC)", got.Hour())
	}
}

func TestParseTimestamp_Empty(t *testing.T) {
	if got := parseTimestamp(""); !got.IsZero() {
		t.Errorf("expected zero time for empty input, got %v", got)
	}
}
