package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/allclear/internal/service"
)

// AuthHandler serves sign-up and sign-in.
type AuthHandler struct {
	responder
	Accounts *service.Accounts
}

func NewAuthHandler(accounts *service.Accounts, log zerolog.Logger) *AuthHandler {
	if accounts == nil {
		panic("nil accounts passed to NewAuthHandler")
	}
	return &AuthHandler{responder: responder{log: log}, Accounts: accounts}
}

// SignUp: create the account and return a session token immediately.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpReq
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Accounts.SignUp(ctx, service.SignUpInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"token":   res.Token.Token,
		"user":    res.User.Profile(),
	})
}

// SignIn: check credentials and return a session token.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInReq
	if err := bindJSON(c, &req); err != nil {
		return h.fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Accounts.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Sign in successful",
		"token":   res.Token.Token,
		"user":    res.User.Profile(),
	})
}
