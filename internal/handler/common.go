package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campaign-companion/internal/middleware"
	"github.com/iliyamo/campaign-companion/internal/model"
	"github.com/iliyamo/campaign-companion/internal/repository"
)

// caller returns the authenticated identity set by JWTAuth.
func caller(c echo.Context) (model.Identity, error) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return model.Identity{}, repository.ErrUnauthorized
	}
	return id, nil
}

// pathString reads a required, non-blank path parameter.
func pathString(c echo.Context, name string) (string, bool) {
	v := strings.TrimSpace(c.Param(name))
	return v, v != ""
}

// pathID reads a positive integer path parameter.
func pathID(c echo.Context, name string) (int64, bool) {
	n, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
