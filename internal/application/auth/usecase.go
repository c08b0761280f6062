package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jhoicas/Inventario-shipments/internal/application/dto"
	"github.com/jhoicas/Inventario-shipments/internal/application/ports"
	"github.com/jhoicas/Inventario-shipments/internal/domain"
	"github.com/jhoicas/Inventario-shipments/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase autentica al operario contra el backend y emite el JWT de la API.
type AuthUseCase struct {
	connector ports.Connector
	jwtCfg    JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(connector ports.Connector, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{connector: connector, jwtCfg: jwtCfg}
}

// Login abre sesión en el backend, lee el empleado del usuario y genera el JWT.
// Devuelve ErrUnauthorized si el backend rechaza las credenciales y ErrNoEmployee
// si el usuario no tiene empleado (sin él no hay envíos asignados).
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if in.Login == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	cred, err := uc.connector.Login(ctx, in.Login, in.Password)
	if err != nil {
		var re *domain.RemoteError
		if errors.As(err, &re) && re.Kind == domain.RemoteKindTransport {
			return nil, err
		}
		return nil, fmt.Errorf("login %s: %w", in.Login, domain.ErrUnauthorized)
	}
	if cred.UserID == 0 {
		return nil, domain.ErrUnauthorized
	}

	employeeID, err := uc.EmployeeOf(ctx, cred)
	if err != nil {
		return nil, err
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes, jwt.Identity{
		UserID:     strconv.FormatInt(cred.UserID, 10),
		Login:      cred.Login,
		EmployeeID: strconv.FormatInt(employeeID, 10),
		Session:    cred.Session,
	})
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  dto.UserResponse{ID: cred.UserID, Login: cred.Login, EmployeeID: employeeID},
	}, nil
}

// EmployeeOf devuelve el empleado (company.employee) asociado al usuario de la sesión.
func (uc *AuthUseCase) EmployeeOf(ctx context.Context, cred ports.Credentials) (int64, error) {
	rows, err := uc.connector.Connect(cred).Search(ctx, ports.SearchRequest{
		Model:  "res.user",
		Domain: []ports.Clause{ports.Eq("id", cred.UserID)},
		Fields: []string{"employee"},
		Limit:  1,
	})
	if err != nil {
		return 0, fmt.Errorf("leer usuario %d: %w", cred.UserID, err)
	}
	var employeeID int64
	if len(rows) > 0 {
		if employeeID, err = rows[0].Int64("employee"); err != nil {
			return 0, fmt.Errorf("leer usuario %d: %w", cred.UserID, err)
		}
	}
	if employeeID == 0 {
		return 0, domain.ErrNoEmployee
	}
	return employeeID, nil
}
