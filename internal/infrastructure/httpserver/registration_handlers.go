package httpserver

import (
	"encoding/base64"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sima-oba/auth-service/internal/core/domain/apperror"
	"github.com/sima-oba/auth-service/internal/core/domain/identity"
)

// decodeCode recovers the raw token secret from its urlsafe-base64 form as
// carried in links and request payloads. Garbage is treated the same as an
// unknown token.
func decodeCode(code string) (string, error) {
	secret, err := base64.URLEncoding.DecodeString(code)
	if err != nil {
		return "", apperror.Authorization("Invalid token")
	}
	return string(secret), nil
}

type ownerActivationRequest struct {
	Doc string `json:"doc"`
}

func (s *Server) requestOwnerActivation(c echo.Context) error {
	var req ownerActivationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Doc == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "doc is required")
	}

	ident, err := s.registrationSvc.RequestOwnerActivation(c.Request().Context(), req.Doc)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"email": ident.Email})
}

type activateOwnerRequest struct {
	Code     string `json:"code"`
	Password string `json:"password"`
}

func (s *Server) activateOwner(c echo.Context) error {
	var req activateOwnerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Code == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code and password are required")
	}

	secret, err := decodeCode(req.Code)
	if err != nil {
		return err
	}

	if _, err := s.registrationSvc.ActivateOwner(c.Request().Context(), secret, req.Password); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

type publicRegistrationRequest struct {
	Doc      string `json:"doc"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (s *Server) registerPublicUser(c echo.Context) error {
	var req publicRegistrationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Doc == "" || req.FullName == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "doc, full_name, email and password are required")
	}

	ident, err := s.registrationSvc.RegisterPublicUser(c.Request().Context(), &identity.PublicRegistration{
		Doc:      req.Doc,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]string{"email": ident.Email})
}

type activatePublicUserRequest struct {
	Code string `json:"code"`
}

func (s *Server) activatePublicUser(c echo.Context) error {
	var req activatePublicUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}

	secret, err := decodeCode(req.Code)
	if err != nil {
		return err
	}

	if _, err := s.registrationSvc.ActivatePublicUser(c.Request().Context(), secret); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
