package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-shipments/internal/application/dto"
	"github.com/jhoicas/Inventario-shipments/internal/domain"
)

// errorStatus traduce errores de dominio y del backend a status HTTP y código.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrNoEmployee):
		return fiber.StatusForbidden, "NO_EMPLOYEE"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrSessionNotFound):
		return fiber.StatusNotFound, "SESSION_NOT_FOUND"
	case errors.Is(err, domain.ErrSessionBusy):
		return fiber.StatusConflict, "SESSION_BUSY"
	case errors.Is(err, domain.ErrUnsavedChanges):
		return fiber.StatusConflict, "UNSAVED_CHANGES"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	}
	var re *domain.RemoteError
	if errors.As(err, &re) {
		switch re.Kind {
		case domain.RemoteKindNotLogged:
			return fiber.StatusUnauthorized, "BACKEND_SESSION_EXPIRED"
		case domain.RemoteKindTransport:
			return fiber.StatusBadGateway, "BACKEND_UNAVAILABLE"
		case domain.RemoteKindUserError, domain.RemoteKindUserWarning:
			return fiber.StatusUnprocessableEntity, "BACKEND_VALIDATION"
		}
		return fiber.StatusBadGateway, "BACKEND_ERROR"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

func respondError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	msg := err.Error()
	var re *domain.RemoteError
	if errors.As(err, &re) {
		msg = re.FirstMessage()
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
