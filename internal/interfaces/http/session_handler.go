package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-shipments/internal/application/dto"
	"github.com/jhoicas/Inventario-shipments/internal/application/fulfillment"
	"github.com/jhoicas/Inventario-shipments/pkg/i18n"
)

// SessionHandler maneja las sesiones de escaneo abiertas. Todas las rutas
// verifican que la sesión pertenezca al operario del token.
type SessionHandler struct {
	registry *fulfillment.Registry
	tr       *i18n.Translator
}

// NewSessionHandler construye el handler.
func NewSessionHandler(registry *fulfillment.Registry, tr *i18n.Translator) *SessionHandler {
	return &SessionHandler{registry: registry, tr: tr}
}

func (h *SessionHandler) session(c *fiber.Ctx) (*fulfillment.Session, error) {
	return h.registry.Get(c.Params("sid"), GetUserID(c))
}

func (h *SessionHandler) presenter(c *fiber.Ctx) presenter {
	return presenter{tr: h.tr, lang: GetLang(c)}
}

// Get godoc
// @Summary      Estado actual de la sesión
// @Tags         sessions
// @Produce      json
// @Param        sid  path  string  true  "id de la sesión"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/sessions/{sid} [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return respondError(c, err)
	}
	snap, pending, err := sess.Snapshot(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SessionResponse{ID: sess.ID(), Shipment: shipmentDTO(snap), Pending: pendingDTO(pending)})
}

// Input godoc
// @Summary      Procesar una lectura del escáner o una cantidad digitada
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        sid   path  string            true  "id de la sesión"
// @Param        body  body  dto.InputRequest  true  "token leído"
// @Success      200   {object}  dto.InputResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/sessions/{sid}/input [post]
func (h *SessionHandler) Input(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.InputRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in.Token = strings.TrimSpace(in.Token)
	if in.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "token requerido"})
	}
	rep, err := sess.HandleInput(c.UserContext(), in.Token)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.presenter(c).input(rep))
}

// Save godoc
// @Summary      Guardar las cantidades escaneadas en el ERP
// @Tags         sessions
// @Produce      json
// @Param        sid  path  string  true  "id de la sesión"
// @Success      200  {object}  dto.SaveResponse
// @Security     BearerAuth
// @Router       /api/sessions/{sid}/save [post]
func (h *SessionHandler) Save(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return respondError(c, err)
	}
	rep, err := sess.Persist(c.UserContext(), true)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.presenter(c).save(rep))
}

// NextStage godoc
// @Summary      Guardar y avanzar el envío al siguiente estado
// @Tags         sessions
// @Produce      json
// @Param        sid  path  string  true  "id de la sesión"
// @Success      200  {object}  dto.NextStageResponse
// @Security     BearerAuth
// @Router       /api/sessions/{sid}/next-stage [post]
func (h *SessionHandler) NextStage(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return respondError(c, err)
	}
	rep, err := sess.NextStage(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	p := h.presenter(c)
	return c.JSON(dto.NextStageResponse{Save: *p.save(rep.Save), Stage: p.stage(rep.Stage)})
}

// ResetPending godoc
// @Summary      Descartar la línea que espera cantidad
// @Tags         sessions
// @Param        sid  path  string  true  "id de la sesión"
// @Success      204
// @Security     BearerAuth
// @Router       /api/sessions/{sid}/pending [delete]
func (h *SessionHandler) ResetPending(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := sess.ResetPending(); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Leave godoc
// @Summary      Cerrar la sesión; con cambios sin guardar exige ?force=true
// @Tags         sessions
// @Param        sid    path   string  true   "id de la sesión"
// @Param        force  query  bool    false  "descartar cambios sin guardar"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/sessions/{sid} [delete]
func (h *SessionHandler) Leave(c *fiber.Ctx) error {
	if err := h.registry.Leave(c.Params("sid"), GetUserID(c), c.QueryBool("force")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
