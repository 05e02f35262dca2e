package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sima-oba/auth-service/internal/core/domain/owner"
)

type publishOwnerRequest struct {
	ID         string  `json:"id"`
	Doc        string  `json:"doc"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Defaulting *string `json:"defaulting"`
}

// publishOwner accepts an owner record and hands it to the owner stream.
// The reconciliation consumer picks it up asynchronously, so a 202 here
// only means the event was queued.
func (s *Server) publishOwner(c echo.Context) error {
	var req publishOwnerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Doc == "" || req.Name == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "doc, name and email are required")
	}

	err := s.ownerPublisher.PublishNewOwner(c.Request().Context(), &owner.Event{
		ID:         req.ID,
		Doc:        req.Doc,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Defaulting: req.Defaulting,
	})
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusAccepted)
}
