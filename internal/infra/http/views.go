package http

import (
	"time"

	"github.com/Spok95/parts-inventory/internal/domain/inventory"
	"github.com/Spok95/parts-inventory/internal/domain/kits"
	"github.com/Spok95/parts-inventory/internal/domain/parts"
	"github.com/Spok95/parts-inventory/internal/domain/picklists"
	"github.com/Spok95/parts-inventory/internal/domain/shopping"
	"github.com/Spok95/parts-inventory/internal/service"
)

// Wire shapes of the JSON API. Domain types carry no tags; these do.

type boxView struct {
	BoxNo       int            `json:"box_no"`
	Description string         `json:"description"`
	Capacity    int            `json:"capacity"`
	Locations   []locationView `json:"locations,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

type locationView struct {
	BoxNo int    `json:"box_no"`
	LocNo int    `json:"loc_no"`
	Ref   string `json:"ref"`
}

func toBox(b parts.Box, locs []parts.Location) boxView {
	v := boxView{BoxNo: b.BoxNo, Description: b.Description, Capacity: b.Capacity, CreatedAt: b.CreatedAt}
	for _, l := range locs {
		v.Locations = append(v.Locations, locationView{BoxNo: l.BoxNo, LocNo: l.LocNo, Ref: l.Ref()})
	}
	return v
}

type partView struct {
	Key              string    `json:"key"`
	Description      string    `json:"description"`
	ManufacturerCode string    `json:"manufacturer_code,omitempty"`
	Category         string    `json:"category,omitempty"`
	Seller           string    `json:"seller,omitempty"`
	SellerLink       string    `json:"seller_link,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func toPart(p parts.Part) partView {
	return partView{
		Key:              p.Key,
		Description:      p.Description,
		ManufacturerCode: p.ManufacturerCode,
		Category:         p.Category,
		Seller:           p.Seller,
		SellerLink:       p.SellerLink,
		CreatedAt:        p.CreatedAt,
	}
}

type stockView struct {
	PartKey string `json:"part_key"`
	BoxNo   int    `json:"box_no"`
	LocNo   int    `json:"loc_no"`
	Qty     int    `json:"qty"`
}

func toStock(pl inventory.PartLocation) stockView {
	return stockView{PartKey: pl.PartKey, BoxNo: pl.BoxNo, LocNo: pl.LocNo, Qty: pl.Qty}
}

type historyView struct {
	ID                int64     `json:"id"`
	DeltaQty          int       `json:"delta_qty"`
	LocationReference string    `json:"location_reference"`
	CreatedAt         time.Time `json:"created_at"`
}

func toHistory(h inventory.QuantityHistory) historyView {
	return historyView{ID: h.ID, DeltaQty: h.DeltaQty, LocationReference: h.LocationReference, CreatedAt: h.CreatedAt}
}

type kitView struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	BuildTarget       int        `json:"build_target"`
	Status            string     `json:"status"`
	ArchivedAt        *time.Time `json:"archived_at,omitempty"`
	OpenPickLists     *int       `json:"open_pick_lists,omitempty"`
	ShoppingListLinks *int       `json:"shopping_list_links,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toKit(k kits.Kit) kitView {
	return kitView{
		ID:          k.ID,
		Name:        k.Name,
		Description: k.Description,
		BuildTarget: k.BuildTarget,
		Status:      string(k.Status),
		ArchivedAt:  k.ArchivedAt,
		CreatedAt:   k.CreatedAt,
		UpdatedAt:   k.UpdatedAt,
	}
}

func toKitSummary(s kits.Summary) kitView {
	v := toKit(s.Kit)
	open, links := s.OpenPickLists, s.ShoppingListLinks
	v.OpenPickLists, v.ShoppingListLinks = &open, &links
	return v
}

type contentView struct {
	ID              int64  `json:"id"`
	PartKey         string `json:"part_key"`
	PartDescription string `json:"part_description"`
	RequiredPerUnit int    `json:"required_per_unit"`
	Note            string `json:"note"`
	Version         int    `json:"version"`
}

func toContent(c kits.Content) contentView {
	return contentView{
		ID:              c.ID,
		PartKey:         c.PartKey,
		PartDescription: c.PartDescription,
		RequiredPerUnit: c.RequiredPerUnit,
		Note:            c.Note,
		Version:         c.Version,
	}
}

type reservationView struct {
	KitID            int64  `json:"kit_id"`
	KitName          string `json:"kit_name"`
	BuildTarget      int    `json:"build_target"`
	RequiredPerUnit  int    `json:"required_per_unit"`
	ReservedQuantity int    `json:"reserved_quantity"`
}

type availabilityView struct {
	contentView
	TotalRequired int               `json:"total_required"`
	InStock       int               `json:"in_stock"`
	Reserved      int               `json:"reserved"`
	Available     int               `json:"available"`
	Shortfall     int               `json:"shortfall"`
	Reservations  []reservationView `json:"reservations"`
}

type kitDetailView struct {
	kitView
	Contents      []availabilityView `json:"contents"`
	PickLists     []pickListView     `json:"pick_lists"`
	ShoppingLinks []kitLinkView      `json:"shopping_links"`
}

func toKitDetail(d *service.KitDetail) kitDetailView {
	v := kitDetailView{
		kitView:       toKit(d.Kit),
		Contents:      make([]availabilityView, 0, len(d.Contents)),
		PickLists:     make([]pickListView, 0, len(d.PickLists)),
		ShoppingLinks: make([]kitLinkView, 0, len(d.ShoppingLinks)),
	}
	for _, c := range d.Contents {
		av := availabilityView{
			contentView:   toContent(c.Content),
			TotalRequired: c.TotalRequired,
			InStock:       c.InStock,
			Reserved:      c.Reserved,
			Available:     c.Available,
			Shortfall:     c.Shortfall,
			Reservations:  make([]reservationView, 0, len(c.Reservations)),
		}
		for _, e := range c.Reservations {
			av.Reservations = append(av.Reservations, reservationView{
				KitID:            e.KitID,
				KitName:          e.KitName,
				BuildTarget:      e.BuildTarget,
				RequiredPerUnit:  e.RequiredPerUnit,
				ReservedQuantity: e.ReservedQuantity,
			})
		}
		v.Contents = append(v.Contents, av)
	}
	for _, s := range d.PickLists {
		v.PickLists = append(v.PickLists, toPickListSummary(s))
	}
	for _, l := range d.ShoppingLinks {
		v.ShoppingLinks = append(v.ShoppingLinks, toKitLink(l))
	}
	return v
}

type pickListView struct {
	ID                 int64      `json:"id"`
	KitID              int64      `json:"kit_id"`
	KitName            string     `json:"kit_name"`
	RequestedUnits     int        `json:"requested_units"`
	Status             string     `json:"status"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	LineCount          int        `json:"line_count"`
	CompletedLineCount int        `json:"completed_line_count"`
	TotalQuantity      int        `json:"total_quantity"`
	PickedQuantity     int        `json:"picked_quantity"`
	RemainingQuantity  int        `json:"remaining_quantity"`
	Lines              []lineView `json:"lines,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type lineView struct {
	ID                int64      `json:"id"`
	KitContentID      int64      `json:"kit_content_id"`
	PartKey           string     `json:"part_key"`
	PartDescription   string     `json:"part_description"`
	BoxNo             int        `json:"box_no"`
	LocNo             int        `json:"loc_no"`
	QuantityToPick    int        `json:"quantity_to_pick"`
	Status            string     `json:"status"`
	InventoryChangeID *int64     `json:"inventory_change_id"`
	PickedAt          *time.Time `json:"picked_at"`
}

func pickListHeader(pl picklists.PickList) pickListView {
	return pickListView{
		ID:             pl.ID,
		KitID:          pl.KitID,
		KitName:        pl.KitName,
		RequestedUnits: pl.RequestedUnits,
		Status:         string(pl.Status),
		CompletedAt:    pl.CompletedAt,
		CreatedAt:      pl.CreatedAt,
	}
}

func toPickListSummary(s picklists.Summary) pickListView {
	v := pickListHeader(s.PickList)
	v.LineCount = s.LineCount
	v.CompletedLineCount = s.CompletedLineCount
	v.TotalQuantity = s.TotalQuantity
	v.PickedQuantity = s.PickedQuantity
	v.RemainingQuantity = s.TotalQuantity - s.PickedQuantity
	return v
}

func toPickListDetail(d *service.PickListDetail) pickListView {
	v := pickListHeader(d.PickList)
	v.LineCount = len(d.Lines)
	v.CompletedLineCount = d.CompletedLineCount
	v.TotalQuantity = d.TotalQuantity
	v.PickedQuantity = d.PickedQuantity
	v.RemainingQuantity = d.RemainingQuantity()
	v.Lines = make([]lineView, 0, len(d.Lines))
	for _, l := range d.Lines {
		v.Lines = append(v.Lines, lineView{
			ID:                l.ID,
			KitContentID:      l.KitContentID,
			PartKey:           l.PartKey,
			PartDescription:   l.PartDescription,
			BoxNo:             l.BoxNo,
			LocNo:             l.LocNo,
			QuantityToPick:    l.QuantityToPick,
			Status:            string(l.Status),
			InventoryChangeID: l.InventoryChangeID,
			PickedAt:          l.PickedAt,
		})
	}
	return v
}

type shoppingListView struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Status      string             `json:"status"`
	LineCount   int                `json:"line_count"`
	Lines       []shoppingLineView `json:"lines,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

type shoppingLineView struct {
	PartKey string `json:"part_key"`
	Needed  int    `json:"needed"`
	Note    string `json:"note"`
}

func toShoppingList(l shopping.List, lines []shopping.Line) shoppingListView {
	v := shoppingListView{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Status:      string(l.Status),
		LineCount:   l.LineCount,
		CreatedAt:   l.CreatedAt,
	}
	for _, line := range lines {
		v.Lines = append(v.Lines, shoppingLineView{PartKey: line.PartKey, Needed: line.Needed, Note: line.Note})
	}
	return v
}

type kitLinkView struct {
	ShoppingListID       int64     `json:"shopping_list_id"`
	ShoppingListName     string    `json:"shopping_list_name"`
	ShoppingListStatus   string    `json:"shopping_list_status"`
	RequestedUnits       int       `json:"requested_units"`
	HonorReserved        bool      `json:"honor_reserved"`
	SnapshotKitUpdatedAt time.Time `json:"snapshot_kit_updated_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func toKitLink(l shopping.KitLink) kitLinkView {
	return kitLinkView{
		ShoppingListID:       l.ShoppingListID,
		ShoppingListName:     l.ShoppingListName,
		ShoppingListStatus:   string(l.ShoppingListStatus),
		RequestedUnits:       l.RequestedUnits,
		HonorReserved:        l.HonorReserved,
		SnapshotKitUpdatedAt: l.SnapshotKitUpdatedAt,
		UpdatedAt:            l.UpdatedAt,
	}
}

type pushView struct {
	ShoppingList shoppingListView `json:"shopping_list"`
	Link         kitLinkView      `json:"link"`
	Parts        []pushedPartView `json:"parts"`
}

type pushedPartView struct {
	PartKey   string `json:"part_key"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
	Added     int    `json:"added"`
}

func toPush(r *service.PushResult) pushView {
	v := pushView{
		ShoppingList: toShoppingList(r.List, nil),
		Link:         toKitLink(r.Link),
		Parts:        make([]pushedPartView, 0, len(r.Parts)),
	}
	for _, p := range r.Parts {
		v.Parts = append(v.Parts, pushedPartView(p))
	}
	return v
}
