package collection

// Settings is the state of one package inside one collection.
type Settings struct {
	Enabled  bool `json:"enabled"`
	Priority int  `json:"priority"`
	// Options maps a group name to its selected option indices.
	// Groups without an entry use their default selection.
	Options map[string][]int `json:"options,omitempty"`
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	out := Settings{Enabled: s.Enabled, Priority: s.Priority}
	if s.Options != nil {
		out.Options = make(map[string][]int, len(s.Options))
		for g, idx := range s.Options {
			out.Options[g] = append([]int(nil), idx...)
		}
	}
	return out
}

func cloneSettings(in map[string]Settings) map[string]Settings {
	out := make(map[string]Settings, len(in))
	for id, s := range in {
		out[id] = s.Clone()
	}
	return out
}
