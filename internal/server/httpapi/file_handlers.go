package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/policysignoff/internal/common"
	"github.com/dmitrijs2005/policysignoff/internal/httpx"
	"github.com/dmitrijs2005/policysignoff/internal/server/services"
)

type uploadTargetView struct {
	UploadURL string            `json:"upload_url"`
	Key       string            `json:"key"`
	Headers   map[string]string `json:"headers,omitempty"`
}

type downloadTargetView struct {
	DownloadURL string `json:"download_url"`
	FileName    string `json:"file_name"`
}

func (h *handler) uploadURL(w http.ResponseWriter, r *http.Request) {
	id, ok := policyID(w, r)
	if !ok {
		return
	}

	var in services.UploadInput
	if err := httpx.ReadJSON(r, &in); err != nil {
		writeBadJSON(w, r, err)
		return
	}

	u := currentUser(r)
	t, err := h.files.RequestUploadTarget(r.Context(), u.ID, id, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "upload url issued", "policy_id", id, "user_id", u.ID, "key", t.Key)
	httpx.WriteJSON(w, http.StatusOK, uploadTargetView{UploadURL: t.URL, Key: t.Key, Headers: t.Headers})
}

func (h *handler) uploadComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := policyID(w, r)
	if !ok {
		return
	}

	err := h.files.CompleteUpload(r.Context(), currentUser(r).ID, id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, common.ErrNotFound):
		writeNotFound(w, r, "Uploaded file not found")
	case errors.Is(err, common.ErrConflict):
		writeError(w, r, http.StatusConflict, "CONFLICT", "File was replaced by a newer upload")
	default:
		h.writeServiceError(w, r, err)
	}
}

func (h *handler) downloadURL(w http.ResponseWriter, r *http.Request) {
	id, ok := policyID(w, r)
	if !ok {
		return
	}

	t, err := h.files.RequestDownloadTarget(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeNotFound(w, r, "No file attached")
			return
		}
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, downloadTargetView{DownloadURL: t.URL, FileName: t.FileName})
}
