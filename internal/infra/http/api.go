package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Spok95/parts-inventory/internal/domain/errs"
	"github.com/Spok95/parts-inventory/internal/service"
)

const maxBodyBytes = 8 << 20

type Services struct {
	Catalog   *service.Catalog
	Inventory *service.Inventory
	Kits      *service.Kits
	PickLists *service.PickLists
	Shopping  *service.Shopping
}

// API is the JSON surface over the services.
type API struct {
	svc Services
	log *slog.Logger
}

func NewAPI(svc Services, log *slog.Logger) *API {
	return &API{svc: svc, log: log}
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/boxes", a.createBox)
	mux.HandleFunc("GET /api/boxes", a.listBoxes)
	mux.HandleFunc("GET /api/boxes/{box_no}", a.getBox)

	mux.HandleFunc("POST /api/parts", a.createPart)
	mux.HandleFunc("GET /api/parts", a.listParts)
	mux.HandleFunc("GET /api/parts/{key}", a.getPart)
	mux.HandleFunc("GET /api/parts/{key}/locations", a.partLocations)
	mux.HandleFunc("GET /api/parts/{key}/history", a.partHistory)

	mux.HandleFunc("POST /api/inventory/add", a.addStock)
	mux.HandleFunc("POST /api/inventory/remove", a.removeStock)
	mux.HandleFunc("POST /api/inventory/move", a.moveStock)
	mux.HandleFunc("POST /api/inventory/import", a.importStock)

	mux.HandleFunc("POST /api/kits", a.createKit)
	mux.HandleFunc("GET /api/kits", a.listKits)
	mux.HandleFunc("GET /api/kits/{id}", a.getKit)
	mux.HandleFunc("PUT /api/kits/{id}", a.updateKit)
	mux.HandleFunc("DELETE /api/kits/{id}", a.deleteKit)
	mux.HandleFunc("POST /api/kits/{id}/archive", a.archiveKit)
	mux.HandleFunc("POST /api/kits/{id}/unarchive", a.unarchiveKit)
	mux.HandleFunc("POST /api/kits/{id}/contents", a.addContent)
	mux.HandleFunc("PATCH /api/kits/{id}/contents/{content_id}", a.updateContent)
	mux.HandleFunc("DELETE /api/kits/{id}/contents/{content_id}", a.deleteContent)

	mux.HandleFunc("POST /api/kits/{id}/pick-lists", a.createPickList)
	mux.HandleFunc("GET /api/kits/{id}/pick-lists", a.listPickLists)
	mux.HandleFunc("GET /api/pick-lists/{id}", a.getPickList)
	mux.HandleFunc("DELETE /api/pick-lists/{id}", a.deletePickList)
	mux.HandleFunc("GET /api/pick-lists/{id}/export.xlsx", a.exportPickList)
	mux.HandleFunc("POST /api/pick-lists/{id}/lines/{line_id}/pick", a.pickLine)
	mux.HandleFunc("POST /api/pick-lists/{id}/lines/{line_id}/undo", a.undoLine)

	mux.HandleFunc("POST /api/kits/{id}/shopping-list", a.pushKit)
	mux.HandleFunc("GET /api/kits/{id}/shopping-lists", a.kitLinks)
	mux.HandleFunc("POST /api/shopping-lists", a.createShoppingList)
	mux.HandleFunc("GET /api/shopping-lists", a.listShoppingLists)
	mux.HandleFunc("GET /api/shopping-lists/{id}", a.getShoppingList)
	mux.HandleFunc("POST /api/shopping-lists/{id}/status", a.setShoppingListStatus)
	mux.HandleFunc("GET /api/shopping-lists/{id}/export.xlsx", a.exportShoppingList)
}

// badRequest marks malformed input that never reached a service.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func respondXLSX(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// fail maps service errors onto status codes.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	var br badRequest
	switch {
	case errors.As(err, &br):
		respondError(w, http.StatusBadRequest, br.msg)
	case errors.Is(err, errs.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrInvalidOperation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	default:
		a.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest{msg: "invalid request body: " + err.Error()}
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest{msg: fmt.Sprintf("invalid %s %q", name, r.PathValue(name))}
	}
	return id, nil
}

func pathInt(r *http.Request, name string) (int, error) {
	id, err := pathID(r, name)
	return int(id), err
}

func queryInt(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, badRequest{msg: fmt.Sprintf("invalid %s %q", name, s)}
	}
	return n, nil
}
