package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/allclear/internal/service"
)

// UserHandler serves the authenticated user's own account.
type UserHandler struct {
	responder
	Accounts *service.Accounts
}

func NewUserHandler(accounts *service.Accounts, log zerolog.Logger) *UserHandler {
	if accounts == nil {
		panic("nil accounts passed to NewUserHandler")
	}
	return &UserHandler{responder: responder{log: log}, Accounts: accounts}
}

// Profile returns the caller's profile, reloaded from the store.
func (h *UserHandler) Profile(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Accounts.Profile(ctx, me.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u.Profile()})
}

// UpdateProfile changes any of firstName, lastName, email.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req updateProfileReq
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Accounts.UpdateProfile(ctx, me.ID, service.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully", "user": u.Profile()})
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req changePasswordReq
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Accounts.ChangePassword(ctx, me.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}

// DeleteAccount removes the caller's account together with its friends
// and locations.
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	me, err := currentUser(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Accounts.DeleteAccount(ctx, me.ID); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Account deleted successfully"})
}
