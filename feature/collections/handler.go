package collections

import (
	"errors"

	"mod-manager/core/collection"
	"mod-manager/core/logger"
	"mod-manager/core/mods"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for collections and assignments.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the collection routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/collections")
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleCreate)
	group.Get("/:name", h.HandleGet)
	group.Delete("/:name", h.HandleDelete)
	group.Put("/:name/mods/:mod", h.HandleUpdateMod)
	group.Post("/:name/clean", h.HandleClean)
	group.Post("/:name/rebuild", h.HandleRebuild)
	group.Get("/:name/conflicts", h.HandleConflicts)

	assignments := app.Group("/assignments")
	assignments.Get("/", h.HandleAssignments)
	assignments.Put("/default", h.HandleAssign(scopeDefault))
	assignments.Put("/forced", h.HandleAssign(scopeForced))
	assignments.Put("/actors/:actor", h.HandleAssign(scopeActor))
	assignments.Delete("/actors/:actor", h.HandleUnassign)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, collection.ErrCollectionNotFound), errors.Is(err, mods.ErrPackageNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, collection.ErrCollectionExists):
		status = fiber.StatusConflict
	case errors.Is(err, collection.ErrEmptyCollection),
		errors.Is(err, collection.ErrProtectedCollection),
		errors.Is(err, collection.ErrInvalidName),
		errors.Is(err, collection.ErrInvalidOption):
		status = fiber.StatusBadRequest
	default:
		logger.WithRayID(h.service.logger, c).Error("Collection request failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// HandleList lists all collections.
// @Summary List Collections
// @Description List every collection with the state of its last build.
// @Tags collections
// @Produce json
// @Success 200 {array} Summary
// @Router /collections [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	list, err := h.service.List()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

type createRequest struct {
	Name     string `json:"name"`
	CopyFrom string `json:"copy_from"`
}

// HandleCreate creates a collection.
// @Summary Create Collection
// @Description Create an empty collection or a copy of an existing one.
// @Tags collections
// @Accept json
// @Produce json
// @Param request body createRequest true "Collection"
// @Success 201 {object} Detail
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 409 {object} map[string]string "Conflict"
// @Router /collections [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	detail, err := h.service.Create(c.Context(), req.Name, req.CopyFrom)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(detail)
}

// HandleGet returns one collection.
// @Summary Get Collection
// @Tags collections
// @Produce json
// @Param name path string true "Collection name"
// @Success 200 {object} Detail
// @Failure 404 {object} map[string]string "Not Found"
// @Router /collections/{name} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	detail, err := h.service.Get(c.Params("name"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(detail)
}

// HandleDelete deletes a collection.
// @Summary Delete Collection
// @Tags collections
// @Param name path string true "Collection name"
// @Success 204
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /collections/{name} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("name")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleUpdateMod changes the settings of one package.
// @Summary Update Package Settings
// @Description Enable, prioritize or select options of a package in a collection.
// @Tags collections
// @Accept json
// @Produce json
// @Param name path string true "Collection name"
// @Param mod path string true "Package id"
// @Param request body ModUpdate true "Settings"
// @Success 200 {object} collection.Settings
// @Router /collections/{name}/mods/{mod} [put]
func (h *Handler) HandleUpdateMod(c *fiber.Ctx) error {
	var req ModUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	settings, err := h.service.UpdateMod(c.Context(), c.Params("name"), c.Params("mod"), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(settings)
}

// HandleClean drops settings of missing packages.
// @Summary Clean Collection
// @Tags collections
// @Produce json
// @Param name path string true "Collection name"
// @Success 200 {object} map[string]int
// @Router /collections/{name}/clean [post]
func (h *Handler) HandleClean(c *fiber.Ctx) error {
	removed, err := h.service.Clean(c.Context(), c.Params("name"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"removed": removed})
}

// HandleRebuild rebuilds a collection synchronously.
// @Summary Rebuild Collection
// @Tags collections
// @Produce json
// @Param name path string true "Collection name"
// @Success 200 {object} Summary
// @Router /collections/{name}/rebuild [post]
func (h *Handler) HandleRebuild(c *fiber.Ctx) error {
	sum, err := h.service.Rebuild(c.Context(), c.Params("name"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(sum)
}

// HandleConflicts returns the conflict report of a collection.
// @Summary Collection Conflicts
// @Description Path and table-field conflicts of the last built snapshot.
// @Tags collections
// @Produce json
// @Param name path string true "Collection name"
// @Success 200 {object} ConflictReport
// @Router /collections/{name}/conflicts [get]
func (h *Handler) HandleConflicts(c *fiber.Ctx) error {
	report, err := h.service.Conflicts(c.Params("name"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(report)
}

// HandleAssignments returns the router assignments.
// @Summary Get Assignments
// @Tags assignments
// @Produce json
// @Success 200 {object} collection.Assignments
// @Router /assignments [get]
func (h *Handler) HandleAssignments(c *fiber.Ctx) error {
	return c.JSON(h.service.Assignments())
}

type assignRequest struct {
	Collection string `json:"collection"`
}

// HandleAssign returns a handler assigning a collection to scope.
// @Summary Assign Collection
// @Tags assignments
// @Accept json
// @Param request body assignRequest true "Collection"
// @Success 204
// @Router /assignments/default [put]
// @Router /assignments/forced [put]
// @Router /assignments/actors/{actor} [put]
func (h *Handler) HandleAssign(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req assignRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := h.service.Assign(c.Context(), scope, c.Params("actor"), req.Collection); err != nil {
			return h.fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// HandleUnassign drops an actor assignment.
// @Summary Remove Actor Assignment
// @Tags assignments
// @Param actor path string true "Actor name"
// @Success 204
// @Router /assignments/actors/{actor} [delete]
func (h *Handler) HandleUnassign(c *fiber.Ctx) error {
	if err := h.service.Unassign(c.Context(), c.Params("actor")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
