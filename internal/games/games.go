package games

// Game describes a supported title and how to recognise its install folder.
type Game struct {
	Key         string
	Title       string
	AppID       string
	Folder      string // directory name under steamapps/common
	Exe         string // marker executable inside Folder
	PatchSubdir string // directory the patch payload is extracted into
}

// Catalog is an ordered set of games. Iteration order is stable so scan
// output and patch order are reproducible.
type Catalog []Game

const (
	KeyInsurgency  = "insurgency2"
	KeyDayOfInfamy = "dayofinfamy"
)

// Default returns the built-in catalog.
func Default() Catalog {
	return Catalog{
		{
			Key:         KeyInsurgency,
			Title:       "Insurgency 2",
			AppID:       "222880",
			Folder:      "insurgency2",
			Exe:         "insurgency_x64.exe",
			PatchSubdir: "BattlEye",
		},
		{
			Key:         KeyDayOfInfamy,
			Title:       "Day of Infamy",
			AppID:       "447820",
			Folder:      "dayofinfamy",
			Exe:         "dayofinfamy_x64.exe",
			PatchSubdir: "BattlEye",
		},
	}
}

func (c Catalog) Lookup(key string) (Game, bool) {
	for _, g := range c {
		if g.Key == key {
			return g, true
		}
	}
	return Game{}, false
}

// Keys returns the game keys in catalog order.
func (c Catalog) Keys() []string {
	keys := make([]string, 0, len(c))
	for _, g := range c {
		keys = append(keys, g.Key)
	}
	return keys
}

// Filter returns the games whose key is in keys, preserving catalog order.
// An empty keys slice returns the whole catalog.
func (c Catalog) Filter(keys []string) Catalog {
	if len(keys) == 0 {
		return c
	}
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	out := Catalog{}
	for _, g := range c {
		if want[g.Key] {
			out = append(out, g)
		}
	}
	return out
}
