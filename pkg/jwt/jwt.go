package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity datos del operario autenticado contra el backend Tryton.
type Identity struct {
	UserID     string // id de res.user
	Login      string
	EmployeeID string // id de company.employee; filtra los envíos asignados
	Session    string // clave de sesión Tryton para las llamadas JSON-RPC
}

// Claims incluye los claims estándar JWT más la identidad del operario.
type Claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"user_id"`
	Login      string `json:"login"`
	EmployeeID string `json:"employee_id"`
	Session    string `json:"tryton_session"`
}

// Generate genera un token JWT firmado con la identidad del operario.
func Generate(secret, issuer string, expMinutes int, id Identity) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:     id.UserID,
		Login:      id.Login,
		EmployeeID: id.EmployeeID,
		Session:    id.Session,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve la identidad.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, tokenString string) (Identity, error) {
	if secret == "" {
		return Identity{}, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("claims inválidos")
	}
	return Identity{
		UserID:     claims.UserID,
		Login:      claims.Login,
		EmployeeID: claims.EmployeeID,
		Session:    claims.Session,
	}, nil
}
