package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agritrace/produce-chain/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes:
//     validation 400, auth 401, policy 403/404/409/422, dependency 503.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Validation: the request is malformed, resubmit with corrected input.
	switch {
	case errors.Is(err, domain.ErrInvalidPhone),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidNumeric),
		errors.Is(err, domain.ErrNumericOverflow):
		return http.StatusBadRequest, err.Error()
	}

	// Auth: the caller must re-authenticate.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrNoActiveChallenge),
		errors.Is(err, domain.ErrChallengeExpired),
		errors.Is(err, domain.ErrCodeMismatch),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized, err.Error()
	}

	// Policy: well-formed but not permitted; not retriable without changing
	// the request.
	switch {
	case errors.Is(err, domain.ErrIdentityExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrIdentityNotFound), errors.Is(err, domain.ErrProduceNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrNotFarmer):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrUnknownRecipient), errors.Is(err, domain.ErrIllegalTransfer):
		return http.StatusUnprocessableEntity, err.Error()
	}
	if rejected, ok := domain.IsLedgerRejected(err); ok {
		return http.StatusUnprocessableEntity, rejected.Reason
	}

	// Dependency: retriable by the caller after backoff.
	if errors.Is(err, domain.ErrLedgerUnavailable) || errors.Is(err, domain.ErrNotifierUnavailable) {
		return http.StatusServiceUnavailable, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
