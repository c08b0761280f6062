package dto

// LoginRequest credenciales del operario en el backend Tryton.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse operario autenticado.
type UserResponse struct {
	ID         int64  `json:"id"`
	Login      string `json:"login"`
	EmployeeID int64  `json:"employee_id"`
}

// LoginResponse token JWT y datos del operario.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
