package resolver

import (
	"errors"
	"net/url"

	"mod-manager/core/gamedata"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP lookups.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the resolver routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/resolve", h.HandleResolve)
	app.Get("/tables/*", h.HandleTable)
}

func badPath(c *fiber.Ctx, err error) error {
	var pathErr *gamedata.PathError
	if errors.As(err, &pathErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// HandleResolve looks up which source serves a logical path.
// @Summary Resolve Path
// @Description Actor collection first, then Default, then Forced.
// @Tags resolver
// @Produce json
// @Param path query string true "Logical game path"
// @Param actor query string false "Actor name"
// @Success 200 {object} Answer
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /resolve [get]
func (h *Handler) HandleResolve(c *fiber.Ctx) error {
	answer, err := h.service.Resolve(c.Query("path"), c.Query("actor"))
	if err != nil {
		return badPath(c, err)
	}
	return c.JSON(answer)
}

// HandleTable serves a synthesized table blob.
// @Summary Get Synthesized Table
// @Tags resolver
// @Produce octet-stream
// @Param path path string true "Table game path"
// @Param actor query string false "Actor name"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string "Not Found"
// @Router /tables/{path} [get]
func (h *Handler) HandleTable(c *fiber.Ctx) error {
	raw, err := url.PathUnescape(c.Params("*"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid path"})
	}
	blob, res, err := h.service.Table(raw, c.Query("actor"))
	if err != nil {
		return badPath(c, err)
	}
	if res == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no synthesized table"})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	c.Set("X-Collection", res.Collection)
	return c.Send(blob)
}
