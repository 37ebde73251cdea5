package models

import "time"

// Category is an owner-scoped label for transactions. Names are unique per
// owner.
type Category struct {
	ID        string
	OwnerID   string
	Name      string
	CreatedAt time.Time
}
