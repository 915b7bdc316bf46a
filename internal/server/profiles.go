package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/privchat/privchat/internal/authz"
	"github.com/privchat/privchat/internal/runtime"
	"github.com/privchat/privchat/internal/store"
)

type ProfilesHandler struct {
	Store *store.Store
}

func (h *ProfilesHandler) Register(g *echo.Group, secret []byte, revoker runtime.Revoker) {
	g.Use(runtime.EchoAuthMiddleware(secret, revoker))
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
}

// Get profile
//
//	@Summary	Fetch any principal's profile
//	@Tags		profiles
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	ProfileResponse
//	@Failure	404	{object}	HTTPError
//	@Router		/api/profiles/{id} [get]
func (h *ProfilesHandler) get(c echo.Context) error {
	requester := c.Get("user_id").(string)
	p, err := h.Store.GetProfile(c.Request().Context(), requester, c.Param("id"))
	if err != nil {
		return storeErrToHTTP(err)
	}
	return c.JSON(http.StatusOK, ProfileResponse{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		CreatedAt:   p.CreatedAt,
	})
}

// Update profile
//
//	@Summary	Update own display name
//	@Tags		profiles
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Success	200	{object}	ProfileResponse
//	@Failure	403	{object}	HTTPError
//	@Failure	404	{object}	HTTPError
//	@Router		/api/profiles/{id} [put]
func (h *ProfilesHandler) update(c echo.Context) error {
	requester := c.Get("user_id").(string)
	id := c.Param("id")
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.Store.UpdateDisplayName(c.Request().Context(), requester, id, req.DisplayName); err != nil {
		return storeErrToHTTP(err)
	}
	p, err := h.Store.GetProfile(c.Request().Context(), requester, id)
	if err != nil {
		return storeErrToHTTP(err)
	}
	return c.JSON(http.StatusOK, ProfileResponse{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		CreatedAt:   p.CreatedAt,
	})
}

// storeErrToHTTP maps store errors onto the HTTP error taxonomy. Forbidden
// and not-found stay distinct so ownership denials are never reported as
// missing rows.
func storeErrToHTTP(err error) error {
	switch {
	case errors.Is(err, authz.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, "email already exists")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
