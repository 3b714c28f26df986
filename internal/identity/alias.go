package identity

import "strings"

// teamAliases maps common alternate spellings, full names, and historical
// abbreviations a source might emit to the canonical three-letter MLB
// abbreviation. This is the "static alias table" spec.md §4.4 names as the
// last resort in game resolution.
var teamAliases = map[string]string{
	"arizona diamondbacks": "ARI", "diamondbacks": "ARI", "dbacks": "ARI",
	"atlanta braves": "ATL", "braves": "ATL",
	"baltimore orioles": "BAL", "orioles": "BAL",
	"boston red sox": "BOS", "red sox": "BOS", "redsox": "BOS",
	"chicago cubs": "CHC", "cubs": "CHC",
	"chicago white sox": "CHW", "white sox": "CHW", "whitesox": "CHW", "cws": "CHW",
	"cincinnati reds": "CIN", "reds": "CIN",
	"cleveland guardians": "CLE", "guardians": "CLE",
	"colorado rockies": "COL", "rockies": "COL",
	"detroit tigers": "DET", "tigers": "DET",
	"houston astros": "HOU", "astros": "HOU",
	"kansas city royals": "KC", "royals": "KC", "kcr": "KC",
	"los angeles angels": "LAA", "angels": "LAA",
	"los angeles dodgers": "LAD", "dodgers": "LAD",
	"miami marlins": "MIA", "marlins": "MIA",
	"milwaukee brewers": "MIL", "brewers": "MIL",
	"minnesota twins": "MIN", "twins": "MIN",
	"new york mets": "NYM", "mets": "NYM",
	"new york yankees": "NYY", "yankees": "NYY",
	"oakland athletics": "OAK", "athletics": "OAK", "as": "OAK",
	"philadelphia phillies": "PHI", "phillies": "PHI",
	"pittsburgh pirates": "PIT", "pirates": "PIT",
	"san diego padres": "SD", "padres": "SD", "sdp": "SD",
	"san francisco giants": "SF", "giants": "SF", "sfg": "SF",
	"seattle mariners": "SEA", "mariners": "SEA",
	"st. louis cardinals": "STL", "st louis cardinals": "STL", "cardinals": "STL",
	"tampa bay rays": "TB", "rays": "TB", "tbr": "TB",
	"texas rangers": "TEX", "rangers": "TEX",
	"toronto blue jays": "TOR", "blue jays": "TOR", "bluejays": "TOR",
	"washington nationals": "WSH", "nationals": "WSH", "wsn": "WSH",
}

// normalizeTeamName lowercases, trims, and collapses a team name so it can
// be looked up in teamAliases regardless of minor punctuation or casing
// differences between sources.
func normalizeTeamName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// resolveTeamAbbrev returns the canonical abbreviation for name, trying an
// exact abbreviation match first (a source may already send the canonical
// three-letter code) before falling back to the alias table.
func resolveTeamAbbrev(name string) (string, bool) {
	normalized := normalizeTeamName(name)
	upper := strings.ToUpper(strings.TrimSpace(name))
	for _, abbrev := range teamAliases {
		if abbrev == upper {
			return abbrev, true
		}
	}
	if abbrev, ok := teamAliases[normalized]; ok {
		return abbrev, true
	}
	return "", false
}
