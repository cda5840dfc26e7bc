package criteria

import (
	"encoding/json"
	"reflect"
	"slices"
)

// Set is an immutable collection of assessments keyed by criterion and kept
// in canonical criterion order. With returns a modified copy.
type Set struct {
	items []Assessment
}

// NewSet builds a set from assessments. A later assessment for the same
// criterion replaces an earlier one.
func NewSet(assessments ...Assessment) Set {
	var s Set
	for _, a := range assessments {
		s = s.With(a)
	}
	return s
}

// Len returns the number of assessments in the set.
func (s Set) Len() int {
	return len(s.items)
}

// Get returns the assessment for c.
func (s Set) Get(c Criterion) (Assessment, bool) {
	for _, a := range s.items {
		if a.Criterion == c {
			return a, true
		}
	}
	return Assessment{}, false
}

// Verdict returns the verdict recorded for c, or false if c is absent.
func (s Set) Verdict(c Criterion) (Verdict, bool) {
	a, ok := s.Get(c)
	return a.Verdict, ok
}

// With returns a copy of s with a inserted or replacing the existing assessment for a.Criterion.
func (s Set) With(a Assessment) Set {
	items := make([]Assessment, 0, len(s.items)+1)
	replaced := false
	for _, existing := range s.items {
		if existing.Criterion == a.Criterion {
			items = append(items, a)
			replaced = true
			continue
		}
		items = append(items, existing)
	}
	if !replaced {
		items = append(items, a)
		slices.SortStableFunc(items, func(x, y Assessment) int {
			return x.Criterion.order() - y.Criterion.order()
		})
	}
	return Set{items: items}
}

// Assessments returns a copy of the assessments in canonical order.
func (s Set) Assessments() []Assessment {
	return slices.Clone(s.items)
}

// Missing returns the required criteria absent from s.
func (s Set) Missing() []Criterion {
	var missing []Criterion
	for _, c := range required {
		if _, ok := s.Get(c); !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// WithVerdict returns the required criteria present in s with verdict v.
func (s Set) WithVerdict(v Verdict) []Criterion {
	var out []Criterion
	for _, a := range s.items {
		if a.Criterion.IsRequired() && a.Verdict == v {
			out = append(out, a.Criterion)
		}
	}
	return out
}

// Tally counts verdicts across the required criteria in s. The entity
// criterion is excluded.
func (s Set) Tally() Tally {
	var t Tally
	for _, a := range s.items {
		if !a.Criterion.IsRequired() {
			continue
		}
		switch a.Verdict {
		case Affirm:
			t.Affirm++
		case Deny:
			t.Deny++
		case Unresolved:
			t.Unresolved++
		}
	}
	return t
}

func (s Set) MarshalJSON() ([]byte, error) {
	if s.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.items)
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var items []Assessment
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewSet(items...)
	return nil
}

// Tally summarizes verdict counts across required criteria.
type Tally struct {
	Affirm     int `json:"affirm"`
	Deny       int `json:"deny"`
	Unresolved int `json:"unresolved"`
}

// Equal reports whether s and o hold the same assessments, including history.
// go-cmp calls it when diffing sets, since items is unexported.
func (s Set) Equal(o Set) bool {
	if len(s.items) != len(o.items) {
		return false
	}
	return reflect.DeepEqual(s.items, o.items) || len(s.items) == 0
}
