package http

import (
	"context"
	"net/http"

	"github.com/Spok95/parts-inventory/internal/domain/kits"
	"github.com/Spok95/parts-inventory/internal/service"
)

type createKitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	BuildTarget int    `json:"build_target"`
}

func (a *API) createKit(w http.ResponseWriter, r *http.Request) {
	var req createKitRequest
	if err := decodeBody(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	k, err := a.svc.Kits.Create(r.Context(), service.KitInput(req))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toKit(*k))
}

func (a *API) listKits(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.Kits.List(r.Context(), kits.Status(r.URL.Query().Get("status")))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]kitView, 0, len(list))
	for _, s := range list {
		out = append(out, toKitSummary(s))
	}
	respondJSON(w, http.StatusOK, out)
}

func (a *API) getKit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	d, err := a.svc.Kits.Detail(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toKitDetail(d))
}

type updateKitRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	BuildTarget *int    `json:"build_target"`
}

func (a *API) updateKit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req updateKitRequest
	if err := decodeBody(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	k, err := a.svc.Kits.Update(r.Context(), id, service.KitUpdate(req))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toKit(*k))
}

func (a *API) deleteKit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.Kits.Delete(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) archiveKit(w http.ResponseWriter, r *http.Request) {
	a.setKitStatus(w, r, a.svc.Kits.Archive)
}

func (a *API) unarchiveKit(w http.ResponseWriter, r *http.Request) {
	a.setKitStatus(w, r, a.svc.Kits.Unarchive)
}

func (a *API) setKitStatus(w http.ResponseWriter, r *http.Request, apply func(context.Context, int64) (*kits.Kit, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	k, err := apply(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toKit(*k))
}

type addContentRequest struct {
	PartKey         string `json:"part_key"`
	RequiredPerUnit int    `json:"required_per_unit"`
	Note            string `json:"note"`
}

func (a *API) addContent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req addContentRequest
	if err := decodeBody(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	c, err := a.svc.Kits.AddContent(r.Context(), id, service.ContentInput(req))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toContent(*c))
}

// updateContentRequest must echo the version the client last read.
type updateContentRequest struct {
	RequiredPerUnit *int    `json:"required_per_unit"`
	Note            *string `json:"note"`
	Version         *int    `json:"version"`
}

func (a *API) updateContent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	contentID, err := pathID(r, "content_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req updateContentRequest
	if err := decodeBody(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if req.Version == nil {
		a.fail(w, r, badRequest{msg: "version is required"})
		return
	}
	c, err := a.svc.Kits.UpdateContent(r.Context(), id, contentID, kits.ContentUpdate{
		RequiredPerUnit: req.RequiredPerUnit,
		Note:            req.Note,
		Version:         *req.Version,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toContent(*c))
}

func (a *API) deleteContent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	contentID, err := pathID(r, "content_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.svc.Kits.DeleteContent(r.Context(), id, contentID); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
