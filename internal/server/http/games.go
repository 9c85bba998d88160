package http

import (
	"resultboard/internal/server/catalog"
	"resultboard/internal/server/core"
	"resultboard/internal/server/logging"

	"github.com/gofiber/fiber/v2"
)

// ListGames returns the whole catalog by rank
func (h *HTTPHandler) ListGames(c *fiber.Ctx) error {
	games, err := h.svc.Catalog().List(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(core.GamesResponse{Games: games})
}

// GetGame returns one game by code
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	g, err := h.svc.Catalog().Get(c.UserContext(), c.Params("code"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(core.GameResponse{Game: g})
}

// CreateGame adds a game to the catalog
func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, err := validatedBody[core.CreateGameRequest](c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: err.Error(),
			Code:  core.CodeInternalError,
		})
	}

	g, err := h.svc.Catalog().Create(c.UserContext(), catalog.NewGame{
		Name:        req.Name,
		Code:        req.Code,
		DefaultTime: req.DefaultTime,
		OrderIndex:  req.OrderIndex,
		Active:      req.IsActive,
	})
	if err != nil {
		return h.fail(c, err)
	}

	logging.Info(h.logger, "game created", logging.FieldGameCode, g.Code)
	return c.Status(fiber.StatusCreated).JSON(core.GameResponse{Game: g})
}

// UpdateGame applies a partial update to the game in the path
func (h *HTTPHandler) UpdateGame(c *fiber.Ctx) error {
	req, err := validatedBody[core.UpdateGameRequest](c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: err.Error(),
			Code:  core.CodeInternalError,
		})
	}

	g, err := h.svc.Catalog().Update(c.UserContext(), c.Params("code"), catalog.Changes{
		Name:        req.Name,
		NewCode:     req.NewCode,
		DefaultTime: req.DefaultTime,
		OrderIndex:  req.OrderIndex,
		Active:      req.IsActive,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(core.GameResponse{Game: g})
}

// DeleteGame removes a game; its results stay stored
func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	id, err := h.svc.Catalog().Delete(c.UserContext(), c.Params("code"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(core.DeletedGameResponse{Deleted: id})
}

// BulkUpsertGames creates or updates an array of games in order
func (h *HTTPHandler) BulkUpsertGames(c *fiber.Ctx) error {
	var items []core.BulkGameItem
	if err := c.BodyParser(&items); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid request body",
			Code:    core.CodeInvalidRequest,
			Details: "expected a JSON array of games",
		})
	}
	if len(items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.CodeValidationFailed,
			Details: "at least one game is required",
		})
	}

	outcomes, err := h.svc.Catalog().BulkUpsert(c.UserContext(), items)
	if err != nil {
		return h.fail(c, err)
	}

	logging.Info(h.logger, "bulk game upsert", logging.FieldCount, len(outcomes))
	return c.JSON(core.BulkResponse{Results: outcomes})
}
