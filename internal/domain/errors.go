package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrSessionNotFound   = errors.New("sesión de escaneo no encontrada o expirada")
	ErrSessionBusy       = errors.New("la sesión está procesando otra lectura")
	ErrUnsavedChanges    = errors.New("hay cantidades escaneadas sin guardar")
	ErrTransitionRefused = errors.New("el servidor rechazó la transición de estado")
	ErrNoEmployee        = errors.New("el usuario no tiene empleado asociado")
)
