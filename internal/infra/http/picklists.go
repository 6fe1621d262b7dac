package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Spok95/parts-inventory/internal/report"
	"github.com/Spok95/parts-inventory/internal/service"
)

type createPickListRequest struct {
	RequestedUnits int `json:"requested_units"`
}

func (a *API) createPickList(w http.ResponseWriter, r *http.Request) {
	kitID, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req createPickListRequest
	if err := decodeBody(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	d, err := a.svc.PickLists.Create(r.Context(), kitID, req.RequestedUnits)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toPickListDetail(d))
}

func (a *API) listPickLists(w http.ResponseWriter, r *http.Request) {
	kitID, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	list, err := a.svc.PickLists.ListForKit(r.Context(), kitID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]pickListView, 0, len(list))
	for _, s := range list {
		out = append(out, toPickListSummary(s))
	}
	respondJSON(w, http.StatusOK, out)
}

func (a *API) getPickList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	d, err := a.svc.PickLists.Get(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPickListDetail(d))
}

func (a *API) deletePickList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.PickLists.Delete(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) exportPickList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	d, err := a.svc.PickLists.Get(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	data, err := report.PickList(d.PickList, d.Lines)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondXLSX(w, fmt.Sprintf("pick_list_%d.xlsx", id), data)
}

func (a *API) pickLine(w http.ResponseWriter, r *http.Request) {
	a.changeLine(w, r, a.svc.PickLists.PickLine)
}

func (a *API) undoLine(w http.ResponseWriter, r *http.Request) {
	a.changeLine(w, r, a.svc.PickLists.UndoLine)
}

func (a *API) changeLine(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, pickListID, lineID int64) (*service.PickListDetail, error),
) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	lineID, err := pathID(r, "line_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	d, err := apply(r.Context(), id, lineID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPickListDetail(d))
}
