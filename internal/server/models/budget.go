package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Budget holds an owner's per-category spending caps for one month.
type Budget struct {
	ID        string
	OwnerID   string
	Month     string
	Limits    LimitSet
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Limit is one category cap inside a budget.
type Limit struct {
	CategoryID string          `json:"category_id"`
	Cap        decimal.Decimal `json:"cap"`
}

// LimitSet maps category IDs to caps. A category appears at most once.
// Iteration follows insertion order. The zero value is an empty set.
type LimitSet struct {
	order []string
	caps  map[string]decimal.Decimal
}

// NewLimitSet builds a set from limits, failing on a repeated category.
func NewLimitSet(limits ...Limit) (LimitSet, error) {
	var s LimitSet
	for _, l := range limits {
		if !s.Add(l.CategoryID, l.Cap) {
			return LimitSet{}, fmt.Errorf("duplicate limit for category %q", l.CategoryID)
		}
	}
	return s, nil
}

func (s *LimitSet) Len() int { return len(s.order) }

func (s *LimitSet) Get(categoryID string) (decimal.Decimal, bool) {
	c, ok := s.caps[categoryID]
	return c, ok
}

// Add inserts a limit and reports false, leaving the set untouched, when
// the category already has one.
func (s *LimitSet) Add(categoryID string, limit decimal.Decimal) bool {
	if _, ok := s.caps[categoryID]; ok {
		return false
	}
	if s.caps == nil {
		s.caps = make(map[string]decimal.Decimal)
	}
	s.caps[categoryID] = limit
	s.order = append(s.order, categoryID)
	return true
}

// Set replaces the cap of an existing limit. It reports false when the
// category has none.
func (s *LimitSet) Set(categoryID string, limit decimal.Decimal) bool {
	if _, ok := s.caps[categoryID]; !ok {
		return false
	}
	s.caps[categoryID] = limit
	return true
}

// Remove deletes the limit for categoryID if present.
func (s *LimitSet) Remove(categoryID string) bool {
	if _, ok := s.caps[categoryID]; !ok {
		return false
	}
	delete(s.caps, categoryID)
	for i, id := range s.order {
		if id == categoryID {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns the limits in insertion order.
func (s *LimitSet) List() []Limit {
	out := make([]Limit, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Limit{CategoryID: id, Cap: s.caps[id]})
	}
	return out
}

// Clone returns an independent copy.
func (s *LimitSet) Clone() LimitSet {
	var c LimitSet
	for _, l := range s.List() {
		c.Add(l.CategoryID, l.Cap)
	}
	return c
}

func (s LimitSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

func (s *LimitSet) UnmarshalJSON(b []byte) error {
	var limits []Limit
	if err := json.Unmarshal(b, &limits); err != nil {
		return err
	}
	set, err := NewLimitSet(limits...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}
