package api

import (
	"errors"

	"github.com/alexanderramin/planboard/internal/app"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/repository"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.health)

	api := s.app.Group("/api/v1")

	users := api.Group("/users")
	users.Get("/:id/availability", s.availability)
	users.Get("/:id/allocations", s.existingAllocations)

	tasks := api.Group("/tasks")
	tasks.Post("/:id/plan", s.planTask)
	tasks.Delete("/:id/plan", s.unplanTask)
	tasks.Get("/:id/schedule", s.schedule)

	api.Post("/push-forward", s.pushForward)
}

// health handles GET /health.
func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "healthy"})
}

// availability handles GET /api/v1/users/:id/availability.
func (s *Server) availability(c *fiber.Ctx) error {
	start, err := domain.ParseDate(c.Query("start"))
	if err != nil {
		return badRequest(c, "start: "+err.Error())
	}
	end, err := domain.ParseDate(c.Query("end"))
	if err != nil {
		return badRequest(c, "end: "+err.Error())
	}
	kind, err := queryKind(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	days, err := s.planning.Availability(c.UserContext(), app.AvailabilityRequest{
		UserID:        c.Params("id"),
		Start:         start,
		End:           end,
		Kind:          kind,
		ExcludeTaskID: c.Query("exclude_task_id"),
	})
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(toAvailability(days))
}

// existingAllocations handles GET /api/v1/users/:id/allocations.
func (s *Server) existingAllocations(c *fiber.Ctx) error {
	date, err := domain.ParseDate(c.Query("date"))
	if err != nil {
		return badRequest(c, "date: "+err.Error())
	}
	kind, err := queryKind(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	existing, err := s.planning.ExistingAllocations(c.UserContext(), c.Params("id"), date, kind, c.Query("exclude_task_id"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(toExisting(existing))
}

// planTask handles POST /api/v1/tasks/:id/plan.
func (s *Server) planTask(c *fiber.Ctx) error {
	var req PlanTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		return badRequest(c, "start_date: "+err.Error())
	}
	strategy, err := app.ParseStrategy(req.Strategy)
	if err != nil {
		return badRequest(c, err.Error())
	}

	resp, err := s.planning.Plan(c.UserContext(), app.PlanRequest{
		TaskID:      c.Params("id"),
		UserID:      req.UserID,
		StartDate:   start,
		Strategy:    strategy,
		HoursPerDay: req.HoursPerDay,
	})
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(toPlanResponse(resp))
}

// unplanTask handles DELETE /api/v1/tasks/:id/plan.
func (s *Server) unplanTask(c *fiber.Ctx) error {
	if err := s.planning.Unplan(c.UserContext(), c.Params("id")); err != nil {
		return s.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// schedule handles GET /api/v1/tasks/:id/schedule.
func (s *Server) schedule(c *fiber.Ctx) error {
	sched, err := s.planning.Schedule(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(ScheduleResponse{
		Task:             toTask(sched.Task),
		Allocations:      toAllocations(sched.Allocations),
		ChildAllocations: toChildAllocations(sched.ChildAllocations),
	})
}

// pushForward handles POST /api/v1/push-forward.
func (s *Server) pushForward(c *fiber.Ctx) error {
	var req PushForwardRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	from, err := domain.ParseDate(req.FromDate)
	if err != nil {
		return badRequest(c, "from_date: "+err.Error())
	}
	kind := domain.KindWork
	if req.Kind != "" {
		if kind, err = domain.ParseKind(req.Kind); err != nil {
			return badRequest(c, err.Error())
		}
	}

	res, err := s.planning.PushForward(c.UserContext(), app.PushForwardRequest{
		UserID:       req.UserID,
		FromDate:     from,
		NewTaskID:    req.NewTaskID,
		NewTaskHours: req.NewTaskHours,
		Kind:         kind,
		HoursPerDay:  req.HoursPerDay,
	})
	if err != nil {
		return s.writeError(c, err)
	}
	shifted := res.ShiftedTasks
	if shifted == nil {
		shifted = []string{}
	}
	return c.JSON(PushForwardResponse{
		Placed:        toAllocations(res.Placed),
		ShiftedTasks:  shifted,
		ShiftedBefore: res.ShiftedBefore,
	})
}

func queryKind(c *fiber.Ctx) (domain.Kind, error) {
	k := c.Query("kind")
	if k == "" {
		return domain.KindWork, nil
	}
	return domain.ParseKind(k)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: msg,
	})
}

// statusFor maps scheduling failures to HTTP statuses.
func statusFor(code app.PlanErrorCode) int {
	switch code {
	case app.ErrInvalidRequest:
		return fiber.StatusBadRequest
	case app.ErrNoAccess:
		return fiber.StatusForbidden
	case app.ErrDependencyNotPlanned, app.ErrDependencyConstraint:
		return fiber.StatusConflict
	case app.ErrPushForwardFailed:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusUnprocessableEntity
	}
}

func (s *Server) writeError(c *fiber.Ctx, err error) error {
	var pe *app.PlanError
	switch {
	case errors.As(err, &pe):
		return c.Status(statusFor(pe.Code)).JSON(ErrorResponse{
			Error:          string(pe.Code),
			Message:        pe.Error(),
			TaskID:         pe.TaskID,
			RemainingHours: pe.RemainingHours,
			AvailableHours: pe.AvailableHours,
			Conflicts:      pe.Conflicts,
		})
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	}
	s.logger.ErrorContext(c.UserContext(), "request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	})
}
