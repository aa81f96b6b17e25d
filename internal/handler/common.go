package handler // handler defines the HTTP handlers of the API

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/allclear/internal/logging"
	"github.com/iliyamo/allclear/internal/middleware"
	"github.com/iliyamo/allclear/internal/model"
	"github.com/iliyamo/allclear/internal/service"
	"github.com/iliyamo/allclear/internal/validation"
)

// requestTimeout bounds the store work of one request.
const requestTimeout = 5 * time.Second

var errMalformedBody = errors.New("malformed request body")

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// bindJSON decodes the body into dst and runs its validation rules.  An
// empty body decodes as {} so the rules report every missing field.  A
// value of the wrong JSON type is reported next to the rule violations of
// the remaining fields; the body must hold exactly one JSON value.
func bindJSON(c echo.Context, dst any) error {
	dec := json.NewDecoder(c.Request().Body)
	var mismatch validation.Errors
	switch err := dec.Decode(dst); {
	case err == nil:
	case errors.Is(err, io.EOF):
		return validation.Struct(dst)
	default:
		var te *json.UnmarshalTypeError
		if !errors.As(err, &te) {
			return errMalformedBody
		}
		mismatch = validation.TypeMismatch(dst, te.Field)
	}
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return errMalformedBody
	}

	err := validation.Struct(dst)
	if len(mismatch) == 0 {
		return err
	}
	var verrs validation.Errors
	if err != nil && !errors.As(err, &verrs) {
		return err
	}
	return verrs.Merge(mismatch...)
}

// currentUser returns the user placed in the context by SessionAuth.
func currentUser(c echo.Context) (model.User, error) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return model.User{}, service.ErrUnauthenticated
	}
	return u, nil
}

// errorResponse maps a handler error to a status and message.  ok is false
// for errors that are not part of the API contract.
func errorResponse(err error) (status int, msg string, ok bool) {
	switch {
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, "Invalid request body", true
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "Access token required", true
	case errors.Is(err, service.ErrDuplicateEmail):
		return http.StatusBadRequest, "User with this email already exists", true
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password", true
	case errors.Is(err, service.ErrAccountDeactivated):
		return http.StatusUnauthorized, "Account is deactivated", true
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusBadRequest, "Email already in use", true
	case errors.Is(err, service.ErrWrongPassword):
		return http.StatusBadRequest, "Current password is incorrect", true
	case errors.Is(err, service.ErrDuplicateFriend):
		return http.StatusBadRequest, "Friend with this email already exists", true
	case errors.Is(err, service.ErrInvalidCoordinates):
		return http.StatusBadRequest, "Invalid coordinates", true
	case errors.Is(err, service.ErrInvalidStatus):
		return http.StatusBadRequest, "Invalid status", true
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "User not found", true
	case errors.Is(err, service.ErrFriendNotFound):
		return http.StatusNotFound, "Friend not found", true
	case errors.Is(err, service.ErrLocationNotFound):
		return http.StatusNotFound, "Location not found", true
	}
	return http.StatusInternalServerError, "Internal server error", false
}

// responder writes error bodies.  Every body carries "message".
type responder struct {
	log zerolog.Logger
}

func (r responder) fail(c echo.Context, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation failed", "errors": verrs})
	}
	status, msg, ok := errorResponse(err)
	if !ok {
		l := logging.Ctx(c.Request().Context(), r.log)
		l.Error().Err(err).Str("method", c.Request().Method).Str("route", c.Path()).Msg("request failed")
	}
	return c.JSON(status, echo.Map{"message": msg})
}
