package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/domain/shopping"
	"github.com/Spok95/parts-inventory/internal/metrics"
	"github.com/Spok95/parts-inventory/internal/storage"
)

type ShoppingListDetail struct {
	shopping.List
	Lines []shopping.Line
}

// PushRequest names either an existing list (ListID) or a new one to create
// (NewListName).
type PushRequest struct {
	KitID         int64
	ListID        int64
	NewListName   string
	Units         int
	HonorReserved bool
}

// PushedPart is one shortfall merged into a list.
type PushedPart struct {
	PartKey   string
	Required  int
	Available int
	Added     int
}

type PushResult struct {
	List  shopping.List
	Link  shopping.KitLink
	Parts []PushedPart
}

type Shopping struct {
	deps Deps
}

func NewShopping(d Deps) *Shopping {
	return &Shopping{deps: d.withDefaults()}
}

func (s *Shopping) CreateList(ctx context.Context, name, description string) (*shopping.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Invalid("shopping list name is required")
	}
	l, err := s.deps.Store.Repos().Shopping.CreateList(ctx, shopping.List{
		Name:        name,
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		return nil, err
	}
	s.deps.Log.Info("shopping list created", "shopping_list_id", l.ID, "name", l.Name)
	return l, nil
}

func (s *Shopping) Lists(ctx context.Context) ([]shopping.List, error) {
	return s.deps.Store.Repos().Shopping.ListLists(ctx)
}

func (s *Shopping) Get(ctx context.Context, id int64) (*ShoppingListDetail, error) {
	var out *ShoppingListDetail
	err := s.deps.Store.InSnapshot(ctx, func(r storage.Repos) error {
		l, err := getShoppingList(ctx, r, id)
		if err != nil {
			return err
		}
		lines, err := r.Shopping.ListLines(ctx, id)
		if err != nil {
			return fmt.Errorf("list lines of shopping list %d: %w", id, err)
		}
		out = &ShoppingListDetail{List: *l, Lines: lines}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetStatus moves a list along concept -> ready -> done (ready may go back
// to concept).
func (s *Shopping) SetStatus(ctx context.Context, id int64, status shopping.Status) (*shopping.List, error) {
	var out *shopping.List
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		l, err := getShoppingList(ctx, r, id)
		if err != nil {
			return err
		}
		if !shopping.CanTransition(l.Status, status) {
			return errs.Invalid("shopping list %q cannot move from %s to %s", l.Name, l.Status, status)
		}
		out, err = r.Shopping.SetStatus(ctx, id, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.deps.Log.Info("shopping list status changed", "shopping_list_id", id, "status", status)
	return out, nil
}

// PushKit merges the kit's shortfall for req.Units builds into a concept
// list. With HonorReserved, stock claimed by other active kits does not
// count as available. Lines and the kit link are upserted under row locks.
func (s *Shopping) PushKit(ctx context.Context, req PushRequest) (*PushResult, error) {
	if req.Units < 1 {
		return nil, errs.Invalid("units must be >= 1, got %d", req.Units)
	}
	if err := checkQuantity("units", req.Units); err != nil {
		return nil, err
	}
	if req.ListID == 0 && strings.TrimSpace(req.NewListName) == "" {
		return nil, errs.Invalid("either a shopping list id or a new list name is required")
	}

	var res PushResult
	var kitName string
	err := s.deps.Store.InTx(ctx, func(r storage.Repos) error {
		kit, err := getKit(ctx, r, req.KitID)
		if err != nil {
			return err
		}
		if kit.Archived() {
			return errs.Invalid("kit %q is archived", kit.Name)
		}
		kitName = kit.Name

		contents, err := r.Kits.ListContents(ctx, kit.ID)
		if err != nil {
			return fmt.Errorf("list contents of kit %d: %w", kit.ID, err)
		}
		if len(contents) == 0 {
			return errs.Invalid("kit %q has no contents", kit.Name)
		}

		var list *shopping.List
		if req.ListID != 0 {
			if list, err = getShoppingList(ctx, r, req.ListID); err != nil {
				return err
			}
		} else if list, err = r.Shopping.CreateList(ctx, shopping.List{Name: strings.TrimSpace(req.NewListName)}); err != nil {
			return err
		}
		if list.Status != shopping.StatusConcept {
			return errs.Invalid("shopping list %q is %s; only concept lists accept new items", list.Name, list.Status)
		}

		partIDs := make([]int64, 0, len(contents))
		for _, c := range contents {
			if c.PartKey == "" {
				return errs.Invalid("kit content %d references missing part %d", c.ID, c.PartID)
			}
			partIDs = append(partIDs, c.PartID)
		}
		totals, err := r.Inventory.TotalQuantities(ctx, partIDs)
		if err != nil {
			return fmt.Errorf("stock totals: %w", err)
		}
		calc := NewReservationCalculator(r.Kits)

		note := "kit " + kit.Name
		for _, c := range contents {
			required, err := requiredTotal(c.PartKey, c.RequiredPerUnit, req.Units)
			if err != nil {
				return err
			}
			available := totals[c.PartID]
			if req.HonorReserved {
				reserved, err := calc.ReservedQuantityForPart(ctx, c.PartID, kit.ID)
				if err != nil {
					return err
				}
				available = max(0, available-reserved)
			}
			short := required - available
			if short <= 0 {
				continue
			}

			line, err := r.Shopping.GetLineForUpdate(ctx, list.ID, c.PartID)
			if err != nil {
				return fmt.Errorf("lock shopping line for %s: %w", c.PartKey, err)
			}
			if line == nil {
				_, err = r.Shopping.InsertLine(ctx, shopping.Line{
					ShoppingListID: list.ID,
					PartID:         c.PartID,
					Needed:         short,
					Note:           note,
				})
			} else {
				if line.Needed > maxQuantity-short {
					return errs.Invalid("part %s: shopping list %q would need more than %d", c.PartKey, list.Name, maxQuantity)
				}
				line.Needed += short
				if !strings.Contains(line.Note, note) {
					line.Note = strings.TrimPrefix(line.Note+"; "+note, "; ")
				}
				err = r.Shopping.UpdateLine(ctx, *line)
			}
			if err != nil {
				return fmt.Errorf("merge shopping line for %s: %w", c.PartKey, err)
			}
			res.Parts = append(res.Parts, PushedPart{
				PartKey: c.PartKey, Required: required, Available: available, Added: short,
			})
		}

		link, err := r.Shopping.GetKitLinkForUpdate(ctx, kit.ID, list.ID)
		if err != nil {
			return fmt.Errorf("lock kit link: %w", err)
		}
		if link == nil {
			link, err = r.Shopping.InsertKitLink(ctx, shopping.KitLink{
				KitID:                kit.ID,
				ShoppingListID:       list.ID,
				RequestedUnits:       req.Units,
				HonorReserved:        req.HonorReserved,
				SnapshotKitUpdatedAt: kit.UpdatedAt,
			})
			if err != nil {
				return fmt.Errorf("insert kit link: %w", err)
			}
		} else {
			link.RequestedUnits = req.Units
			link.HonorReserved = req.HonorReserved
			link.SnapshotKitUpdatedAt = kit.UpdatedAt
			if err := r.Shopping.UpdateKitLink(ctx, *link); err != nil {
				return fmt.Errorf("update kit link: %w", err)
			}
		}
		res.Link = *link

		if list, err = getShoppingList(ctx, r, list.ID); err != nil {
			return err
		}
		res.List = *list
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.RecordEvent(metrics.EventShoppingListPushed, map[string]string{"honor_reserved": strconv.FormatBool(req.HonorReserved)})
	s.deps.Log.Info("kit pushed to shopping list",
		"kit_id", req.KitID, "shopping_list_id", res.List.ID, "units", req.Units, "parts", len(res.Parts))
	s.deps.notify(ctx, fmt.Sprintf("Kit %q (%d units) pushed to shopping list %q: %d parts short.",
		kitName, req.Units, res.List.Name, len(res.Parts)))
	return &res, nil
}

// KitLinks lists the shopping lists a kit was pushed to, most recent first.
func (s *Shopping) KitLinks(ctx context.Context, kitID int64) ([]shopping.KitLink, error) {
	r := s.deps.Store.Repos()
	if _, err := getKit(ctx, r, kitID); err != nil {
		return nil, err
	}
	return r.Shopping.ListKitLinks(ctx, kitID)
}

func getShoppingList(ctx context.Context, r storage.Repos, id int64) (*shopping.List, error) {
	l, err := r.Shopping.GetList(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get shopping list %d: %w", id, err)
	}
	if l == nil {
		return nil, errs.NotFound("shopping list", id)
	}
	return l, nil
}
