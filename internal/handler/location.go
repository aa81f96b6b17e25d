package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/allclear/internal/model"
	"github.com/iliyamo/allclear/internal/service"
)

// LocationHandler serves the caller's saved points of interest.
type LocationHandler struct {
	responder
	Locations *service.Locations
}

func NewLocationHandler(locations *service.Locations, log zerolog.Logger) *LocationHandler {
	if locations == nil {
		panic("nil locations passed to NewLocationHandler")
	}
	return &LocationHandler{responder: responder{log: log}, Locations: locations}
}

func (h *LocationHandler) List(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	locs, err := h.Locations.List(ctx, me.ID)
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]model.LocationView, 0, len(locs))
	for _, l := range locs {
		out = append(out, l.MapView())
	}
	return c.JSON(http.StatusOK, echo.Map{"locations": out})
}

// Add saves a location.  Unknown types are stored as Other.
func (h *LocationHandler) Add(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req addLocationReq
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	l, err := h.Locations.Add(ctx, me.ID, service.NewLocation{
		Name:        req.Name,
		Type:        req.Type,
		Location:    req.Location.coordinates(),
		Description: req.Description,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"location": l.MapView()})
}

func (h *LocationHandler) UpdateCoordinates(c echo.Context) error {
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

	l, err := h.Locations.UpdateCoordinates(ctx, me.ID, c.Param("id"), loc)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"location": l.MapView()})
}

// Remove deletes the location permanently.
func (h *LocationHandler) Remove(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Locations.Remove(ctx, me.ID, c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Location deleted successfully"})
}
