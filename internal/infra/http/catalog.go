package http

import (
	"context"
	"io"
	"net/http"

	"github.com/Spok95/parts-inventory/internal/domain/inventory"
	"github.com/Spok95/parts-inventory/internal/domain/parts"
	"github.com/Spok95/parts-inventory/internal/report"
	"github.com/Spok95/parts-inventory/internal/service"
)

type createBoxRequest struct {
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
}

func (a *API) createBox(w http.ResponseWriter, r *http.Request) {
	var req createBoxRequest
	if err := decodeBody(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	b, err := a.svc.Catalog.CreateBox(r.Context(), req.Description, req.Capacity)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toBox(b.Box, b.Locations))
}

func (a *API) listBoxes(w http.ResponseWriter, r *http.Request) {
	boxes, err := a.svc.Catalog.Boxes(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]boxView, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, toBox(b, nil))
	}
	respondJSON(w, http.StatusOK, out)
}

func (a *API) getBox(w http.ResponseWriter, r *http.Request) {
	boxNo, err := pathInt(r, "box_no")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	b, err := a.svc.Catalog.GetBox(r.Context(), boxNo)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toBox(b.Box, b.Locations))
}

type createPartRequest struct {
	Key              string `json:"key"`
	Description      string `json:"description"`
	ManufacturerCode string `json:"manufacturer_code"`
	Category         string `json:"category"`
	Seller           string `json:"seller"`
	SellerLink       string `json:"seller_link"`
}

func (a *API) createPart(w http.ResponseWriter, r *http.Request) {
	var req createPartRequest
	if err := decodeBody(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	p, err := a.svc.Catalog.CreatePart(r.Context(), parts.Part{
		Key:              req.Key,
		Description:      req.Description,
		ManufacturerCode: req.ManufacturerCode,
		Category:         req.Category,
		Seller:           req.Seller,
		SellerLink:       req.SellerLink,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toPart(*p))
}

func (a *API) listParts(w http.ResponseWriter, r *http.Request) {
	ps, err := a.svc.Catalog.Parts(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]partView, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPart(p))
	}
	respondJSON(w, http.StatusOK, out)
}

func (a *API) getPart(w http.ResponseWriter, r *http.Request) {
	p, err := a.svc.Catalog.GetPart(r.Context(), r.PathValue("key"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPart(*p))
}

func (a *API) partLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := a.svc.Inventory.Locations(r.Context(), r.PathValue("key"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]stockView, 0, len(locs))
	for _, pl := range locs {
		out = append(out, toStock(pl))
	}
	respondJSON(w, http.StatusOK, out)
}

func (a *API) partHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	hist, err := a.svc.Inventory.History(r.Context(), r.PathValue("key"), limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]historyView, 0, len(hist))
	for _, h := range hist {
		out = append(out, toHistory(h))
	}
	respondJSON(w, http.StatusOK, out)
}

type stockRequest struct {
	PartKey string `json:"part_key"`
	BoxNo   int    `json:"box_no"`
	LocNo   int    `json:"loc_no"`
	Qty     int    `json:"qty"`
}

func (a *API) addStock(w http.ResponseWriter, r *http.Request) {
	a.changeStock(w, r, a.svc.Inventory.AddStock)
}

func (a *API) removeStock(w http.ResponseWriter, r *http.Request) {
	a.changeStock(w, r, a.svc.Inventory.RemoveStock)
}

func (a *API) changeStock(w http.ResponseWriter, r *http.Request,
	apply func(context.Context, service.StockChange) (*inventory.QuantityHistory, error),
) {
	var req stockRequest
	if err := decodeBody(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	h, err := apply(r.Context(), service.StockChange(req))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toHistory(*h))
}

type moveRequest struct {
	PartKey string `json:"part_key"`
	FromBox int    `json:"from_box"`
	FromLoc int    `json:"from_loc"`
	ToBox   int    `json:"to_box"`
	ToLoc   int    `json:"to_loc"`
	Qty     int    `json:"qty"`
}

func (a *API) moveStock(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.Inventory.MoveStock(r.Context(), service.StockMove(req)); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// importStock takes an xlsx body with part_key, box, loc, qty columns.
func (a *API) importStock(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		a.fail(w, r, badRequest{msg: "read body: " + err.Error()})
		return
	}
	rows, err := report.ParseStockSheet(data)
	if err != nil {
		a.fail(w, r, badRequest{msg: err.Error()})
		return
	}
	changes := make([]service.StockChange, 0, len(rows))
	for _, row := range rows {
		changes = append(changes, service.StockChange{PartKey: row.PartKey, BoxNo: row.BoxNo, LocNo: row.LocNo, Qty: row.Qty})
	}
	if err := a.svc.Inventory.ImportStock(r.Context(), changes); err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"imported": len(changes)})
}
