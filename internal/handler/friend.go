package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/allclear/internal/model"
	"github.com/iliyamo/allclear/internal/service"
	"github.com/iliyamo/allclear/internal/validation"
)

// FriendHandler serves the caller's friend list.
type FriendHandler struct {
	responder
	Friends *service.Friends
}

func NewFriendHandler(friends *service.Friends, log zerolog.Logger) *FriendHandler {
	if friends == nil {
		panic("nil friends passed to NewFriendHandler")
	}
	return &FriendHandler{responder: responder{log: log}, Friends: friends}
}

// List returns the caller's active friends in map form, newest first.
func (h *FriendHandler) List(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	friends, err := h.Friends.List(ctx, me.ID)
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]model.FriendView, 0, len(friends))
	for _, f := range friends {
		out = append(out, f.MapView())
	}
	return c.JSON(http.StatusOK, echo.Map{"friends": out})
}

func (h *FriendHandler) Add(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req addFriendReq
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	f, err := h.Friends.Add(ctx, me.ID, service.NewFriend{
		Username: req.Username,
		Email:    req.Email,
		Location: req.Location.coordinates(),
		Status:   model.FriendStatus(req.Status),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Friend added successfully", "friend": f.MapView()})
}

func (h *FriendHandler) UpdateStatus(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req statusReq
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	f, err := h.Friends.UpdateStatus(ctx, me.ID, c.Param("id"), model.FriendStatus(req.Status))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"friend": f.MapView()})
}

func (h *FriendHandler) UpdateLocation(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	loc, err := bindMove(c)
	if err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	f, err := h.Friends.UpdateLocation(ctx, me.ID, c.Param("id"), loc)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"friend": f.MapView()})
}

// Remove deactivates the friend; the record is kept.
func (h *FriendHandler) Remove(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Friends.Remove(ctx, me.ID, c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Friend removed successfully"})
}

// bindMove reads a {lat, lng} body.  Missing or non-numeric values are
// invalid coordinates.
func bindMove(c echo.Context) (model.Coordinates, error) {
	var req moveReq
	if err := bindJSON(c, &req); err != nil {
		if _, ok := err.(validation.Errors); ok {
			return model.Coordinates{}, service.ErrInvalidCoordinates
		}
		return model.Coordinates{}, err
	}
	if req.Lat == nil || req.Lng == nil {
		return model.Coordinates{}, service.ErrInvalidCoordinates
	}
	return model.Coordinates{Lat: *req.Lat, Lng: *req.Lng}, nil
}
