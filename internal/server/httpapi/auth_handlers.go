package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/policysignoff/internal/common"
	"github.com/dmitrijs2005/policysignoff/internal/httpx"
	"github.com/dmitrijs2005/policysignoff/internal/server/models"
	"github.com/dmitrijs2005/policysignoff/internal/server/services"
)

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			h.logger.Warn(r.Context(), "health check failed", "error", err.Error())
			writeError(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
			return
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := httpx.ReadJSON(r, &in); err != nil {
		writeBadJSON(w, r, err)
		return
	}

	u, err := h.users.Register(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "user registered", "user_id", u.ID)
	httpx.WriteJSON(w, http.StatusCreated, newUserView(u))
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := httpx.ReadJSON(r, &in); err != nil {
		writeBadJSON(w, r, err)
		return
	}

	pair, err := h.users.Login(r.Context(), in)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			var ve common.ValidationError
			ve.Add("email", "These credentials do not match our records.")
			httpx.WriteError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "Invalid credentials.", ve.Fields)
			return
		}
		h.writeServiceError(w, r, err)
		return
	}

	h.setAccessCookie(w, pair)
	httpx.WriteJSON(w, http.StatusOK, newTokenView(pair))
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := httpx.ReadJSON(r, &in); err != nil {
		writeBadJSON(w, r, err)
		return
	}
	if in.RefreshToken == "" {
		h.writeServiceError(w, r, common.NewValidationError("refresh_token", "The refresh token field is required."))
		return
	}

	pair, err := h.users.RefreshToken(r.Context(), in.RefreshToken)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.setAccessCookie(w, pair)
	httpx.WriteJSON(w, http.StatusOK, newTokenView(pair))
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := httpx.ReadJSON(r, &in); err != nil && !errors.Is(err, io.EOF) {
		writeBadJSON(w, r, err)
		return
	}

	if err := h.users.Logout(r.Context(), currentUser(r).ID, in.RefreshToken); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenHeaderName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	httpx.WriteJSON(w, http.StatusOK, newUserView(u))
}

func (h *handler) setAccessCookie(w http.ResponseWriter, pair *models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.AccessTokenHeaderName,
		Value:    pair.AccessToken,
		Path:     "/",
		Expires:  pair.ExpiresAt.UTC().Truncate(time.Second),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
