package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-shipments/internal/application/dto"
	"github.com/jhoicas/Inventario-shipments/internal/application/ports"
	"github.com/jhoicas/Inventario-shipments/pkg/jwt"
)

// LocalIdentity key en c.Locals con la identidad del operario.
const LocalIdentity = "identity"

// AuthMiddleware valida el Bearer Token JWT y guarda la identidad del operario en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		id, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if id.UserID == "" || id.Session == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token sin sesión del backend"})
		}
		c.Locals(LocalIdentity, id)
		return c.Next()
	}
}

// GetIdentity devuelve la identidad del contexto (después del middleware de auth).
func GetIdentity(c *fiber.Ctx) (jwt.Identity, bool) {
	id, ok := c.Locals(LocalIdentity).(jwt.Identity)
	return id, ok
}

// GetUserID devuelve el id de res.user del operario o 0.
func GetUserID(c *fiber.Ctx) int64 {
	id, ok := GetIdentity(c)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseInt(id.UserID, 10, 64)
	return n
}

// GetEmployeeID devuelve el id de company.employee del operario o 0.
func GetEmployeeID(c *fiber.Ctx) int64 {
	id, ok := GetIdentity(c)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseInt(id.EmployeeID, 10, 64)
	return n
}

// GetCredentials arma las credenciales del backend a partir del token.
func GetCredentials(c *fiber.Ctx) (ports.Credentials, bool) {
	id, ok := GetIdentity(c)
	if !ok {
		return ports.Credentials{}, false
	}
	userID, err := strconv.ParseInt(id.UserID, 10, 64)
	if err != nil || userID == 0 {
		return ports.Credentials{}, false
	}
	return ports.Credentials{UserID: userID, Login: id.Login, Session: id.Session}, true
}
