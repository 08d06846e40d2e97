package api

import (
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/sourcegraph/conc/pool"

	"bus-schedule/internal/schedule"
	"bus-schedule/internal/session"
)

type handlers struct {
	session *session.Session
}

func departuresRouter(router fiber.Router, h *handlers) {
	router.Get("/", h.listDepartures)
	router.Get("/:id", h.getDeparture)
	router.Get("/:id/next", h.getNextStop)
}

func sessionRouter(router fiber.Router, h *handlers) {
	router.Get("/", h.getSession)
	router.Put("/route", h.chooseRoute)
	router.Put("/departure", h.chooseDeparture)
	router.Put("/stop", h.chooseStop)
	router.Delete("/", h.resetSession)
}

func (h *handlers) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *handlers) listRoutes(c *fiber.Ctx) error {
	return c.JSON(schedule.RouteNames(h.session.Catalog()))
}

func (h *handlers) listDepartures(c *fiber.Ctx) error {
	departures := schedule.DeparturesForRoute(h.session.Catalog(), c.Query("route"))

	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, departures)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Could not reduce departures",
		})
	}
	return c.JSON(reduced)
}

func (h *handlers) getDeparture(c *fiber.Ctx) error {
	dep := schedule.DepartureByID(h.session.Catalog(), c.Params("id"))
	if dep == nil {
		c.Status(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Departure matching identifier",
		})
	}

	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, dep)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Could not reduce Departure",
		})
	}
	return c.JSON(reduced)
}

func (h *handlers) getNextStop(c *fiber.Ctx) error {
	dep := schedule.DepartureByID(h.session.Catalog(), c.Params("id"))
	if dep == nil {
		c.Status(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find Departure matching identifier",
		})
	}

	return c.JSON(fiber.Map{
		"departure": dep.ID,
		"upcoming":  session.UpcomingFor(dep, h.session.Now()),
	})
}

type boardRow struct {
	order     int
	Departure session.DepartureOption `json:"departure"`
	Upcoming  *session.UpcomingView   `json:"upcoming"`
}

func (h *handlers) board(c *fiber.Ctx) error {
	route := c.Query("route")
	if strings.TrimSpace(route) == "" {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "A route must be given",
		})
	}

	now := h.session.Now()

	// Unavailable and limited days replace the per-departure rows.
	today := schedule.Today(h.session.Lookup(), route, now)
	if today.Kind != schedule.AvailabilityNormal {
		return c.JSON(fiber.Map{
			"route":        route,
			"now":          now,
			"availability": today,
			"board":        []boardRow{},
		})
	}

	departures := schedule.DeparturesForRoute(h.session.Catalog(), route)

	p := pool.NewWithResults[boardRow]()
	p.WithMaxGoroutines(8)
	for i := range departures {
		i := i
		p.Go(func() boardRow {
			return boardRow{
				order:     i,
				Departure: session.OptionOf(departures[i]),
				Upcoming:  session.UpcomingFor(&departures[i], now),
			}
		})
	}
	rows := p.Wait()
	sort.Slice(rows, func(a, b int) bool { return rows[a].order < rows[b].order })

	return c.JSON(fiber.Map{
		"route":        route,
		"now":          now,
		"availability": today,
		"board":        rows,
	})
}

func (h *handlers) today(c *fiber.Ctx) error {
	route := c.Query("route")
	if strings.TrimSpace(route) == "" {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "A route must be given",
		})
	}

	now := h.session.Now()
	return c.JSON(fiber.Map{
		"route":        route,
		"day":          now.Weekday().String(),
		"availability": schedule.Today(h.session.Lookup(), route, now),
	})
}

func (h *handlers) getSession(c *fiber.Ctx) error {
	return c.JSON(h.session.View())
}

type routeRequest struct {
	Route string `json:"route"`
}

type departureRequest struct {
	ID string `json:"id"`
}

type stopRequest struct {
	Index *int `json:"index"`
}

func (h *handlers) chooseRoute(c *fiber.Ctx) error {
	var req routeRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	return c.JSON(h.session.ChooseRoute(req.Route))
}

func (h *handlers) chooseDeparture(c *fiber.Ctx) error {
	var req departureRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	return c.JSON(h.session.ChooseDeparture(req.ID))
}

func (h *handlers) chooseStop(c *fiber.Ctx) error {
	var req stopRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	index := schedule.NoStop
	if req.Index != nil {
		index = *req.Index
	}
	return c.JSON(h.session.ChooseStop(index))
}

func (h *handlers) resetSession(c *fiber.Ctx) error {
	return c.JSON(h.session.Reset())
}

func badBody(c *fiber.Ctx, err error) error {
	c.Status(fiber.StatusBadRequest)
	return c.JSON(fiber.Map{
		"error": "Could not parse request body: " + err.Error(),
	})
}
