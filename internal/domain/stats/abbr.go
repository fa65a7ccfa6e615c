package stats

// Full club names as published in historical sheets, mapped to the short
// names used everywhere else.
var teamAbbreviations = map[string]string{
	"Arsenal":       "ARS",
	"Aston Villa":   "AVL",
	"Bournemouth":   "BOU",
	"Brentford":     "BRE",
	"Brighton":      "BHA",
	"Burnley":       "BUR",
	"Chelsea":       "CHE",
	"Crystal Palace": "CRY",
	"Everton":       "EVE",
	"Fulham":        "FUL",
	"Liverpool":     "LIV",
	"Luton":         "LUT",
	"Man City":      "MCI",
	"Man Utd":       "MUN",
	"Newcastle":     "NEW",
	"Nott'm Forest": "NFO",
	"Sheffield Utd": "SHU",
	"Spurs":         "TOT",
	"West Ham":      "WHU",
	"Wolves":        "WOL",
}

// TeamAbbreviation translates a full club name; false when the club is
// not in the table (promoted sides need a table update).
func TeamAbbreviation(fullName string) (string, bool) {
	abbr, ok := teamAbbreviations[fullName]
	return abbr, ok
}
