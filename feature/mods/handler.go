package mods

import (
	"errors"

	"mod-manager/core/logger"
	"mod-manager/core/mods"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for packages.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the mod routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/mods")
	group.Get("/", h.HandleList)
	group.Post("/reload", h.HandleReload)
	group.Get("/:id", h.HandleGet)
	group.Delete("/:id", h.HandleDelete)
	group.Post("/:id/rename", h.HandleRename)
	group.Post("/:id/prune", h.HandlePrune)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, mods.ErrPackageNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, mods.ErrPackageExists):
		status = fiber.StatusConflict
	case errors.Is(err, mods.ErrInvalidID):
		status = fiber.StatusBadRequest
	default:
		logger.WithRayID(h.service.logger, c).Error("Mod request failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// HandleList lists all packages.
// @Summary List Mods
// @Tags mods
// @Produce json
// @Success 200 {array} Summary
// @Router /mods [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.service.List())
}

// HandleGet returns one package with its groups and edits.
// @Summary Get Mod
// @Tags mods
// @Produce json
// @Param id path string true "Package id"
// @Success 200 {object} mods.Package
// @Failure 404 {object} map[string]string "Not Found"
// @Router /mods/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	pkg, err := h.service.Get(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(pkg)
}

// HandleReload rescans the mod directory.
// @Summary Reload Mods
// @Description Rescan the mod directory. Broken folders are skipped and reported.
// @Tags mods
// @Produce json
// @Success 200 {object} ReloadReport
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /mods/reload [post]
func (h *Handler) HandleReload(c *fiber.Ctx) error {
	report, err := h.service.Reload(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(report)
}

// HandlePrune drops default edits equal to the base tables.
// @Summary Prune No-op Edits
// @Tags mods
// @Produce json
// @Param id path string true "Package id"
// @Success 200 {object} PruneResult
// @Failure 404 {object} map[string]string "Not Found"
// @Router /mods/{id}/prune [post]
func (h *Handler) HandlePrune(c *fiber.Ctx) error {
	res, err := h.service.Prune(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(res)
}

type renameRequest struct {
	ID string `json:"id"`
}

// HandleRename moves a package folder. Collections keep their settings.
// @Summary Rename Mod
// @Tags mods
// @Accept json
// @Produce json
// @Param id path string true "Package id"
// @Param request body renameRequest true "New id"
// @Success 200 {object} mods.Package
// @Failure 409 {object} map[string]string "Conflict"
// @Router /mods/{id}/rename [post]
func (h *Handler) HandleRename(c *fiber.Ctx) error {
	var req renameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	pkg, err := h.service.Rename(c.Params("id"), req.ID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(pkg)
}

// HandleDelete removes a package folder.
// @Summary Delete Mod
// @Tags mods
// @Param id path string true "Package id"
// @Success 204
// @Failure 404 {object} map[string]string "Not Found"
// @Router /mods/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
