package shopping

import "time"

type Status string

const (
	StatusConcept Status = "concept"
	StatusReady   Status = "ready"
	StatusDone    Status = "done"
)

var transitions = map[Status][]Status{
	StatusConcept: {StatusReady},
	StatusReady:   {StatusConcept, StatusDone},
}

// CanTransition reports whether a list may move from one status to another.
// Done is terminal.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type List struct {
	ID          int64
	Name        string
	Description string
	Status      Status
	LineCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Line struct {
	ID             int64
	ShoppingListID int64
	PartID         int64
	PartKey        string
	Needed         int
	Note           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// KitLink records that a kit's shortfall was pushed into a list.
type KitLink struct {
	ID                   int64
	KitID                int64
	ShoppingListID       int64
	ShoppingListName     string
	ShoppingListStatus   Status
	RequestedUnits       int
	HonorReserved        bool
	SnapshotKitUpdatedAt time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
