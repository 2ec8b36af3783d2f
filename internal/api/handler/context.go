package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agritrace/produce-chain/internal/core/domain"
	"github.com/agritrace/produce-chain/internal/core/ports"
)

// ctxClaims extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: both phone and role
// must be present (presence proves the middleware ran) and the role must
// parse as a known custody role.
func ctxClaims(c echo.Context) (ports.Claims, error) {
	phone, _ := c.Get("phone").(string)
	roleStr, _ := c.Get("role").(string)
	if phone == "" || roleStr == "" {
		return ports.Claims{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	role, err := domain.ParseRole(roleStr)
	if err != nil {
		return ports.Claims{}, echo.NewHTTPError(http.StatusUnauthorized, "unknown role in token")
	}

	return ports.Claims{Phone: phone, Role: role}, nil
}
