package http

import (
	"strings"

	"resultboard/internal/server/core"

	"github.com/gofiber/fiber/v2"
)

// RecordResult upserts a result on its (game, date, time) slot
func (h *HTTPHandler) RecordResult(c *fiber.Ctx) error {
	req, err := validatedBody[core.ResultRequest](c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: err.Error(),
			Code:  core.CodeInternalError,
		})
	}

	r, err := h.svc.RecordResult(c.UserContext(), *req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

// DeleteResult removes a result by id
func (h *HTTPHandler) DeleteResult(c *fiber.Ctx) error {
	id := c.Params("id")
	if !isValidUUID(id) {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid result ID format",
			Code:    core.CodeInvalidRequest,
			Details: "result ID must be a valid UUID",
		})
	}

	deleted, err := h.svc.DeleteResult(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(core.DeletedResultResponse{DeletedID: deleted})
}

// GetTimewise returns the day matrix for dateStr
func (h *HTTPHandler) GetTimewise(c *fiber.Ctx) error {
	var q core.DateQuery
	if err := parseQuery(c, &q); err != nil {
		return h.fail(c, err)
	}

	m, err := h.svc.Timewise(c.UserContext(), q.DateStr)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(m)
}

// GetSnapshot returns each game's value as of dateStr at time
func (h *HTTPHandler) GetSnapshot(c *fiber.Ctx) error {
	var q core.SnapshotQuery
	if err := parseQuery(c, &q); err != nil {
		return h.fail(c, err)
	}

	snap, err := h.svc.Snapshot(c.UserContext(), q.DateStr, q.Time)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(snap)
}

// GetMonthly returns the monthly chart, optionally for a subset of games
func (h *HTTPHandler) GetMonthly(c *fiber.Ctx) error {
	var q core.MonthlyQuery
	if err := parseQuery(c, &q); err != nil {
		return h.fail(c, err)
	}

	var codes []string
	if q.Games != "" {
		for _, code := range strings.Split(q.Games, ",") {
			if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
				codes = append(codes, code)
			}
		}
	}

	chart, err := h.svc.Monthly(c.UserContext(), q.Year, q.Month, codes)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(chart)
}

// GetHome returns the composite landing view
func (h *HTTPHandler) GetHome(c *fiber.Ctx) error {
	var q core.HomeQuery
	if err := parseQuery(c, &q); err != nil {
		return h.fail(c, err)
	}

	view, err := h.svc.Home(c.UserContext(), q.DateStr)
	if err != nil {
		return h.fail(c, err)
	}

	c.Set(fiber.HeaderCacheControl, homeCacheControl)
	return c.JSON(view)
}
