package acapela

import "sort"

// Voices maps the short names accepted in chat to vendor voice IDs.
var Voices = map[string]string{
	"ella":   "ella22k",
	"emilio": "emilioenglish22k",
	"josh":   "josh22k",
	"karen":  "karen22k",
	"kenny":  "kenny22k",
	"laura":  "laura22k",
	"nelly":  "nelly22k",
	"rod":    "rod22k",
	"ryan":   "ryan22k",
	"saul":   "saul22k",
	"scott":  "scott22k",
	"sharon": "sharon22k",
	"tracy":  "tracy22k",

	"will":   "will22k",
	"badguy": "willbadguy22k",
	"joe":    "willfromafar22k",
	"happy":  "willhappy22k",
	"sad":    "willsad22k",
	"close":  "willupclose22k",

	"brit":   "queenelizabeth22k",
	"deepa":  "deepa22k",
	"aussie": "tyler22k",
	"klaus":  "klaus22k",
	"bun":    "valeriaenglish22k",
}

// Names returns the known voice short names, sorted for stable display.
func Names() []string {
	names := make([]string, 0, len(Voices))
	for name := range Voices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
