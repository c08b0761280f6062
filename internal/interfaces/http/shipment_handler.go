package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-shipments/internal/application/dto"
	"github.com/jhoicas/Inventario-shipments/internal/application/fulfillment"
)

// ShipmentHandler maneja el listado de envíos internos y las operaciones sobre un envío.
type ShipmentHandler struct {
	uc       *fulfillment.ShipmentUseCase
	registry *fulfillment.Registry
}

// NewShipmentHandler construye el handler.
func NewShipmentHandler(uc *fulfillment.ShipmentUseCase, registry *fulfillment.Registry) *ShipmentHandler {
	return &ShipmentHandler{uc: uc, registry: registry}
}

// List godoc
// @Summary      Envíos internos asignados al operario (borrador o en espera)
// @Tags         shipments
// @Produce      json
// @Param        reference  query  string  false  "código exacto del envío"
// @Param        limit      query  int     false  "máximo de filas"
// @Param        offset     query  int     false  "desplazamiento"
// @Success      200  {object}  dto.ShipmentListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/shipments [get]
func (h *ShipmentHandler) List(c *fiber.Ctx) error {
	cred, ok := GetCredentials(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	list, err := h.uc.List(c.UserContext(), cred, GetEmployeeID(c), c.Query("reference"), page)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.ShipmentListResponse{
		Items: make([]dto.ShipmentSummary, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, s := range list {
		out.Items = append(out.Items, summaryDTO(s))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Envío con sus líneas, leído del ERP
// @Tags         shipments
// @Produce      json
// @Param        id   path  int  true  "id del envío"
// @Success      200  {object}  dto.ShipmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/shipments/{id} [get]
func (h *ShipmentHandler) Get(c *fiber.Ctx) error {
	cred, ok := GetCredentials(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	s, err := h.uc.Get(c.UserContext(), cred, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(shipmentDTO(s))
}

// Delete godoc
// @Summary      Eliminar el envío en el ERP y cerrar su sesión de escaneo
// @Tags         shipments
// @Param        id   path  int  true  "id del envío"
// @Success      204
// @Failure      422  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/shipments/{id} [delete]
func (h *ShipmentHandler) Delete(c *fiber.Ctx) error {
	cred, ok := GetCredentials(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	if err := h.uc.Delete(c.UserContext(), cred, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Slip godoc
// @Summary      Hoja de picking del envío en PDF
// @Tags         shipments
// @Produce      application/pdf
// @Param        id   path  int  true  "id del envío"
// @Success      200  {file}  binary
// @Security     BearerAuth
// @Router       /api/shipments/{id}/slip [get]
func (h *ShipmentHandler) Slip(c *fiber.Ctx) error {
	cred, ok := GetCredentials(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	pdf, s, err := h.uc.Slip(c.UserContext(), cred, id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s.pdf"`, slipName(s.Code, id)))
	return c.Send(pdf)
}

// Events godoc
// @Summary      Diario de escaneo del envío
// @Tags         shipments
// @Produce      json
// @Param        id      path   int  true   "id del envío"
// @Param        limit   query  int  false  "máximo de filas"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}  dto.ScanEventResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/shipments/{id}/events [get]
func (h *ShipmentHandler) Events(c *fiber.Ctx) error {
	cred, ok := GetCredentials(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	events, err := h.uc.Events(c.UserContext(), cred, GetEmployeeID(c), id, page)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ScanEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, eventDTO(ev))
	}
	return c.JSON(out)
}

// OpenSession godoc
// @Summary      Abrir (o retomar) la sesión de escaneo del envío
// @Tags         sessions
// @Produce      json
// @Param        id   path  int  true  "id del envío"
// @Success      201  {object}  dto.SessionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/shipments/{id}/session [post]
func (h *ShipmentHandler) OpenSession(c *fiber.Ctx) error {
	cred, ok := GetCredentials(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	sess, err := h.registry.Open(c.UserContext(), cred, id)
	if err != nil {
		return respondError(c, err)
	}
	snap, pending, err := sess.Snapshot(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SessionResponse{
		ID:       sess.ID(),
		Shipment: shipmentDTO(snap),
		Pending:  pendingDTO(pending),
	})
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id %q inválido", c.Params("id"))
	}
	return id, nil
}

func slipName(code string, id int64) string {
	if code == "" {
		return "envio-" + strconv.FormatInt(id, 10)
	}
	return code
}
