package http

import (
	"fmt"
	"net/http"

	"github.com/Spok95/parts-inventory/internal/domain/shopping"
	"github.com/Spok95/parts-inventory/internal/report"
	"github.com/Spok95/parts-inventory/internal/service"
)

type pushKitRequest struct {
	ShoppingListID int64  `json:"shopping_list_id"`
	NewListName    string `json:"new_list_name"`
	Units          int    `json:"units"`
	HonorReserved  bool   `json:"honor_reserved"`
}

func (a *API) pushKit(w http.ResponseWriter, r *http.Request) {
	kitID, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req pushKitRequest
	if err := decodeBody(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.svc.Shopping.PushKit(r.Context(), service.PushRequest{
		KitID:         kitID,
		ListID:        req.ShoppingListID,
		NewListName:   req.NewListName,
		Units:         req.Units,
		HonorReserved: req.HonorReserved,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPush(res))
}

func (a *API) kitLinks(w http.ResponseWriter, r *http.Request) {
	kitID, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	links, err := a.svc.Shopping.KitLinks(r.Context(), kitID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]kitLinkView, 0, len(links))
	for _, l := range links {
		out = append(out, toKitLink(l))
	}
	respondJSON(w, http.StatusOK, out)
}

type createShoppingListRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (a *API) createShoppingList(w http.ResponseWriter, r *http.Request) {
	var req createShoppingListRequest
	if err := decodeBody(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	l, err := a.svc.Shopping.CreateList(r.Context(), req.Name, req.Description)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toShoppingList(*l, nil))
}

func (a *API) listShoppingLists(w http.ResponseWriter, r *http.Request) {
	lists, err := a.svc.Shopping.Lists(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]shoppingListView, 0, len(lists))
	for _, l := range lists {
		out = append(out, toShoppingList(l, nil))
	}
	respondJSON(w, http.StatusOK, out)
}

func (a *API) getShoppingList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	d, err := a.svc.Shopping.Get(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toShoppingList(d.List, d.Lines))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (a *API) setShoppingListStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req statusRequest
	if err := decodeBody(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	l, err := a.svc.Shopping.SetStatus(r.Context(), id, shopping.Status(req.Status))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toShoppingList(*l, nil))
}

func (a *API) exportShoppingList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	d, err := a.svc.Shopping.Get(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	data, err := report.ShoppingList(d.List, d.Lines)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondXLSX(w, fmt.Sprintf("shopping_list_%d.xlsx", id), data)
}
