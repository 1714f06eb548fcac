package booking

import (
	"strings"

	"inmatesearch-backend/lib/textutil"
)

// FieldMap maps normalized labels to values and remembers the order in
// which labels were first written.
type FieldMap struct {
	keys   []string
	values map[string]string
}

func NewFieldMap() FieldMap {
	return FieldMap{values: map[string]string{}}
}

// Set normalizes label and stores value under it. Pairs with an empty side
// are ignored. A later write for the same label wins but keeps the label's
// original position.
func (m *FieldMap) Set(label, value string) {
	key := textutil.NormalizeLabel(label)
	if key == "" || value == "" {
		return
	}
	if m.values == nil {
		m.values = map[string]string{}
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m FieldMap) Len() int {
	return len(m.keys)
}

func (m FieldMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Map returns a copy of the underlying map.
func (m FieldMap) Map() map[string]string {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Get looks up the first candidate that matches a stored label exactly.
// Failing that, it returns the value of the first stored label (in insertion
// order) that contains any candidate, trying candidates in order. Labels
// drift between page variants so the substring pass is kept even though two
// labels sharing a substring can produce a false positive.
func (m FieldMap) Get(candidates ...string) string {
	normalized := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = textutil.NormalizeLabel(c)
		if c == "" {
			continue
		}
		normalized = append(normalized, c)
	}

	for _, c := range normalized {
		if v, ok := m.values[c]; ok {
			return v
		}
	}
	for _, c := range normalized {
		for _, key := range m.keys {
			if strings.Contains(key, c) {
				return m.values[key]
			}
		}
	}
	return ""
}

// reconstructor is the pairing state threaded between consecutive rows.
type reconstructor struct {
	fields  FieldMap
	pending []string
}

func (s reconstructor) step(r Row) reconstructor {
	kind := Classify(r)
	if kind == HeaderRow {
		labels := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			labels[i] = textutil.NormalizeLabel(c)
		}
		s.pending = labels
		return s
	}

	if len(s.pending) > 0 && len(r.Cells) > 0 {
		for i, label := range s.pending {
			if i >= len(r.Cells) {
				break
			}
			s.fields.Set(label, r.Cells[i])
		}
		s.pending = nil
		return s
	}

	switch {
	case kind == InlineLabelValueRow:
		for i := 0; i+1 < len(r.Cells); i += 2 {
			s.fields.Set(r.Cells[i], r.Cells[i+1])
		}
	case len(r.Cells) == 2:
		s.fields.Set(r.Cells[0], r.Cells[1])
	case len(r.Cells) >= 4:
		s.fields.Set(r.Cells[0], r.Cells[1])
		s.fields.Set(r.Cells[2], r.Cells[3])
	}
	return s
}

// Reconstruct folds the rows of a detail page into a FieldMap. Rows that fit
// none of the pairing shapes are dropped.
func Reconstruct(rows []Row) FieldMap {
	state := reconstructor{fields: NewFieldMap()}
	for _, r := range rows {
		state = state.step(r)
	}
	return state.fields
}
