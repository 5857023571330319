package model

import (
	"time"

	"github.com/klub-pratel/klub/internal/condition"
)

// NamedCondition is a stored, named root of a condition tree. The tree is
// persisted in its normalized JSON form and rebuilt on load.
type NamedCondition struct {
	ID          int64          `json:"-"`
	ConditionID string         `json:"id"`
	Name        string         `json:"name"`
	Root        condition.Node `json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ConditionString renders the tree for operator display.
func (nc *NamedCondition) ConditionString() string {
	if nc.Root == nil {
		return ""
	}
	return nc.Root.String()
}
