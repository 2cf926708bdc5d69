package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/policysignoff/internal/common"
	"github.com/dmitrijs2005/policysignoff/internal/httpx"
	"github.com/dmitrijs2005/policysignoff/internal/server/models"
	"github.com/dmitrijs2005/policysignoff/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// policyID parses the {id} route parameter. Malformed ids are answered with
// 404, the same as ids that do not exist.
func policyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeNotFound(w, r, "Not found.")
		return 0, false
	}
	return id, true
}

func currentUser(r *http.Request) *models.User {
	u, _ := UserFromContext(r.Context())
	return u
}

func (h *handler) listPolicies(w http.ResponseWriter, r *http.Request) {
	list, err := h.policies.List(r.Context(), currentUser(r).ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	out := make([]policyItemView, 0, len(list))
	for _, ps := range list {
		out = append(out, newPolicyItemView(ps))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *handler) createPolicy(w http.ResponseWriter, r *http.Request) {
	var in services.CreatePolicyInput
	if err := httpx.ReadJSON(r, &in); err != nil {
		writeBadJSON(w, r, err)
		return
	}

	u := currentUser(r)
	p, err := h.policies.Create(r.Context(), u.ID, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "policy created", "policy_id", p.ID, "user_id", u.ID)
	httpx.WriteJSON(w, http.StatusCreated, newPolicyItemView(models.PolicyStatus{Policy: p}))
}

func (h *handler) showPolicy(w http.ResponseWriter, r *http.Request) {
	id, ok := policyID(w, r)
	if !ok {
		return
	}

	d, err := h.policies.Get(r.Context(), currentUser(r).ID, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newPolicyDetailView(d))
}

type signoffView struct {
	Message  string `json:"message"`
	SignedAt string `json:"signed_at"`
}

func (h *handler) signOff(w http.ResponseWriter, r *http.Request) {
	id, ok := policyID(w, r)
	if !ok {
		return
	}

	u := currentUser(r)
	so, err := h.policies.SignOff(r.Context(), u.ID, id)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			writeError(w, r, http.StatusConflict, "CONFLICT", "Already signed")
			return
		}
		h.writeServiceError(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "policy signed", "policy_id", id, "user_id", u.ID)
	httpx.WriteJSON(w, http.StatusOK, signoffView{
		Message:  "Signed off successfully",
		SignedAt: formatInstant(so.SignedAt),
	})
}
