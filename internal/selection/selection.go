package selection

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Sentinel option labels reserved by the quote forms. Entries carrying them
// are excluded from rule matching.
const (
	LabelNone   = "선택 안함"
	LabelCustom = "직접입력"
)

// Benefits is a payout embedded directly on a selection entry, used by
// services whose benefit is authored on the selection instead of a rule table.
type Benefits struct {
	GiftCard       int64 `json:"giftCard,omitempty"`
	Cash           int64 `json:"cash,omitempty"`
	OneTimePayment int64 `json:"oneTimePayment,omitempty"`
}

// Entry is one chosen option for a service.
type Entry struct {
	Label    string    `json:"label"`
	Price    int64     `json:"price,omitempty"`
	Quantity int       `json:"quantity,omitempty"`
	Benefits *Benefits `json:"benefits,omitempty"`
}

// Qty returns the selected quantity, defaulting to one.
func (e Entry) Qty() int {
	if e.Quantity > 0 {
		return e.Quantity
	}
	return 1
}

// Chosen reports whether the entry represents an actual choice.
func (e Entry) Chosen() bool {
	return e.Label != "" && e.Label != LabelNone
}

// Matchable reports whether the entry participates in rule-table matching.
// Custom entries are priced by the operator and never match authored rules.
func (e Entry) Matchable() bool {
	return e.Chosen() && e.Label != LabelCustom
}

// Selection holds either a single entry or, for multi-select services, an
// ordered list of entries.
type Selection struct {
	one   *Entry
	many  []Entry
	multi bool
}

// Single wraps one entry.
func Single(e Entry) Selection {
	return Selection{one: &e}
}

// Multi wraps an ordered list of entries.
func Multi(entries ...Entry) Selection {
	return Selection{many: entries, multi: true}
}

// IsMulti reports whether the selection carries a list of entries.
func (s Selection) IsMulti() bool {
	return s.multi
}

// IsZero reports whether nothing was ever selected for the service.
func (s Selection) IsZero() bool {
	return !s.multi && s.one == nil
}

// Entries returns the underlying entries. A single selection yields a
// one-element slice.
func (s Selection) Entries() []Entry {
	if s.multi {
		return s.many
	}
	if s.one != nil {
		return []Entry{*s.one}
	}
	return nil
}

// First returns the single entry when the selection is not multi-select.
func (s Selection) First() (Entry, bool) {
	if s.multi || s.one == nil {
		return Entry{}, false
	}
	return *s.one, true
}

// Present reports whether the selection satisfies a required-service
// condition: a multi selection counts when non-empty, a single selection when
// its label is a real choice.
func (s Selection) Present() bool {
	if s.multi {
		return len(s.many) > 0
	}
	return s.one != nil && s.one.Chosen()
}

// UnmarshalJSON accepts both the single-object and the array form used by
// externally produced snapshots.
func (s *Selection) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = Selection{}
		return nil
	}
	if trimmed[0] == '[' {
		var entries []Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return err
		}
		*s = Selection{many: entries, multi: true}
		return nil
	}
	var entry Entry
	if err := json.Unmarshal(trimmed, &entry); err != nil {
		return err
	}
	*s = Selection{one: &entry}
	return nil
}

// MarshalJSON writes the form the selection was built from.
func (s Selection) MarshalJSON() ([]byte, error) {
	if s.multi {
		if s.many == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(s.many)
	}
	if s.one == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*s.one)
}

// Snapshot maps service keys to the user's current selections.
type Snapshot map[string]Selection

// Get returns the selection for a service key.
func (s Snapshot) Get(key string) (Selection, bool) {
	sel, ok := s[key]
	return sel, ok
}

// Keys returns the snapshot's service keys in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
