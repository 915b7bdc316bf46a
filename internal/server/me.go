package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/privchat/privchat/internal/runtime"
	"github.com/privchat/privchat/internal/store"
)

type MeHandler struct {
	Store *store.Store
}

func (h *MeHandler) Register(g *echo.Group, secret []byte, revoker runtime.Revoker) {
	g.Use(runtime.EchoAuthMiddleware(secret, revoker))
	g.GET("", h.get)
	g.DELETE("", h.delete)
}

// Me
//
//	@Summary	Current authenticated principal
//	@Tags		me
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	MeResponse
//	@Router		/api/me [get]
func (h *MeHandler) get(c echo.Context) error {
	return c.JSON(http.StatusOK, MeResponse{UserID: c.Get("user_id").(string)})
}

// Delete account
//
//	@Summary	Delete own account; profile and messages are removed by cascade
//	@Tags		me
//	@Security	BearerAuth
//	@Success	204	{string}	string	"No Content"
//	@Router		/api/me [delete]
func (h *MeHandler) delete(c echo.Context) error {
	sub := c.Get("user_id").(string)
	if err := h.Store.DeleteUser(c.Request().Context(), sub, sub); err != nil {
		return storeErrToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}
