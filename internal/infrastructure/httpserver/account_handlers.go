package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type usernameRequest struct {
	Username string `json:"username"`
}

func (s *Server) requestVerifyEmail(c echo.Context) error {
	var req usernameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}

	if err := s.accountSvc.RequestVerifyEmail(c.Request().Context(), req.Username); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) verifyEmail(c echo.Context) error {
	secret, err := decodeCode(c.Param("code"))
	if err != nil {
		return err
	}

	if _, err := s.accountSvc.VerifyEmail(c.Request().Context(), secret); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) requestResetPassword(c echo.Context) error {
	var req usernameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}

	if err := s.accountSvc.RequestResetPassword(c.Request().Context(), req.Username); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (s *Server) resetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "password is required")
	}

	secret, err := decodeCode(c.Param("code"))
	if err != nil {
		return err
	}

	if err := s.accountSvc.ResetPassword(c.Request().Context(), req.Password, secret); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
