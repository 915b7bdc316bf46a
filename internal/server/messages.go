package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/privchat/privchat/internal/runtime"
	"github.com/privchat/privchat/internal/store"
)

type MessagesHandler struct {
	Store *store.Store
}

// Register mounts the per-principal message routes. The :id segment names the
// history's owner; the gate decides what the requester may do with it.
func (h *MessagesHandler) Register(g *echo.Group, secret []byte, revoker runtime.Revoker) {
	g.Use(runtime.EchoAuthMiddleware(secret, revoker))
	g.POST("/:id/messages", h.create)
	g.GET("/:id/messages", h.list)
	g.DELETE("/:id/messages", h.clear)
}

// Create message
//
//	@Summary	Append one chat turn to own history
//	@Tags		messages
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Success	201	{object}	MessageResponse
//	@Failure	400	{object}	HTTPError
//	@Failure	403	{object}	HTTPError
//	@Router		/api/profiles/{id}/messages [post]
func (h *MessagesHandler) create(c echo.Context) error {
	requester := c.Get("user_id").(string)
	var req CreateMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "content required")
	}
	m, err := h.Store.CreateMessage(c.Request().Context(), requester, c.Param("id"), req.Content, req.IsUser)
	if err != nil {
		return storeErrToHTTP(err)
	}
	return c.JSON(http.StatusCreated, MessageResponse{
		ID:        m.ID,
		Content:   m.Content,
		IsUser:    m.IsUser,
		CreatedAt: m.CreatedAt,
	})
}

// List messages
//
//	@Summary	List a history in ascending timestamp order
//	@Description	Non-owners receive an empty list, never an error
//	@Tags		messages
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	MessageResponse
//	@Router		/api/profiles/{id}/messages [get]
func (h *MessagesHandler) list(c echo.Context) error {
	requester := c.Get("user_id").(string)
	msgs, err := h.Store.ListMessages(c.Request().Context(), requester, c.Param("id"))
	if err != nil {
		return storeErrToHTTP(err)
	}
	out := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageResponse{
			ID:        m.ID,
			Content:   m.Content,
			IsUser:    m.IsUser,
			CreatedAt: m.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Clear messages
//
//	@Summary	Delete own full history
//	@Tags		messages
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	ClearMessagesResponse
//	@Failure	403	{object}	HTTPError
//	@Router		/api/profiles/{id}/messages [delete]
func (h *MessagesHandler) clear(c echo.Context) error {
	requester := c.Get("user_id").(string)
	n, err := h.Store.ClearMessages(c.Request().Context(), requester, c.Param("id"))
	if err != nil {
		return storeErrToHTTP(err)
	}
	return c.JSON(http.StatusOK, ClearMessagesResponse{Deleted: n})
}
