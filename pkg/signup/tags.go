package signup

// TagSet is an ordered set of selected tags. Items keep the order they were
// added in, independent of the order of the candidate list.
type TagSet struct {
	items []string
}

// NewTagSet builds a set from items, dropping duplicates and keeping first occurrence.
func NewTagSet(items ...string) TagSet {
	var t TagSet
	for _, item := range items {
		if !t.Contains(item) {
			t.items = append(t.items, item)
		}
	}
	return t
}

// Toggle removes item if present, otherwise appends it. It reports whether
// item is selected afterwards.
func (t *TagSet) Toggle(item string) bool {
	for i, existing := range t.items {
		if existing == item {
			t.items = append(t.items[:i:i], t.items[i+1:]...)
			return false
		}
	}
	t.items = append(t.items, item)
	return true
}

func (t TagSet) Contains(item string) bool {
	for _, existing := range t.items {
		if existing == item {
			return true
		}
	}
	return false
}

func (t TagSet) Len() int {
	return len(t.items)
}

// Items returns the selected tags in insertion order (the chip list).
func (t TagSet) Items() []string {
	out := make([]string, len(t.items))
	copy(out, t.items)
	return out
}

// Candidate is one entry of the full candidate list.
type Candidate struct {
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Candidates renders the fixed candidate list with selected entries marked.
func (t TagSet) Candidates(list []string) []Candidate {
	out := make([]Candidate, 0, len(list))
	for _, label := range list {
		out = append(out, Candidate{Label: label, Selected: t.Contains(label)})
	}
	return out
}
