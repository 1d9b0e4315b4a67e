package engine

import "sort"

// Kit maps drum sound ids to the notes a hardware or soft drum machine
// expects on its drum channel
type Kit struct {
	Name  string
	Notes map[string]uint8
}

// gmNotes is General MIDI percussion, shared as the base of the other kits
var gmNotes = map[string]uint8{
	"bd":         36,
	"bd2":        35,
	"rim":        37,
	"sd":         38,
	"sd2":        40,
	"cp":         39,
	"clap":       39,
	"hh":         42,
	"hc":         42,
	"oh":         46,
	"ho":         46,
	"lt":         41,
	"tom":        43,
	"mt":         45,
	"ht":         48,
	"crash":      49,
	"cr":         49,
	"cy":         57,
	"ride":       51,
	"rd":         51,
	"cow":        56,
	"cb":         56,
	"tambourine": 54,
	"perc":       75,
	"click":      76,
}

func withOverrides(base map[string]uint8, over map[string]uint8) map[string]uint8 {
	out := make(map[string]uint8, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// Kits contains the available note layouts
var Kits = map[string]Kit{
	"gm": {Name: "General MIDI", Notes: gmNotes},
	"rd8": {Name: "Behringer RD-8", Notes: withOverrides(gmNotes, map[string]uint8{
		"sd": 40, // RD-8 snare sits on 40, not 38
		"lt": 45,
		"mt": 48,
		"ht": 50,
	})},
	"tr8s": {Name: "Roland TR-8S", Notes: withOverrides(gmNotes, map[string]uint8{
		"lt": 43,
		"mt": 47,
		"ht": 50,
	})},
	"er1": {Name: "Korg ER-1", Notes: withOverrides(gmNotes, map[string]uint8{
		"lt":  40,
		"tom": 40,
		"cow": 41,
		"cb":  41,
	})},
}

// DefaultKit is the kit used when none or an unknown one is configured
const DefaultKit = "gm"

// KitNames returns the available kit names, sorted
func KitNames() []string {
	out := make([]string, 0, len(Kits))
	for k := range Kits {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// GetKit returns a kit by name, defaulting to GM if not found
func GetKit(name string) Kit {
	if kit, ok := Kits[name]; ok {
		return kit
	}
	return Kits[DefaultKit]
}

// Note returns the note for sound, or false when the kit has none
func (k Kit) Note(sound string) (uint8, bool) {
	n, ok := k.Notes[sound]
	return n, ok
}
