package handler

import (
	"errors"
	"strings"

	"job-board/internal/delivery/http/dto"
	"job-board/internal/delivery/http/middleware"
	"job-board/internal/pkg/response"
	jobuc "job-board/internal/usecase/job"

	"github.com/gofiber/fiber/v3"
)

type JobsHandler struct {
	uc *jobuc.Service
}

func NewJobsHandler(uc *jobuc.Service) *JobsHandler {
	return &JobsHandler{uc: uc}
}

func (h *JobsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/", h.HandleCreateJob)
	r.Get("/", h.HandleListJobs)
	r.Get("/:id", h.HandleGetJob)
	r.Put("/:id", h.HandleUpdateJob)
	r.Delete("/:id", h.HandleDeleteJob)
}

func (h *JobsHandler) HandleCreateJob(c fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}

	var req jobuc.CreateInput
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	j, err := h.uc.Create(c.Context(), actor, req)
	if err != nil {
		return mapJobUsecaseError(err)
	}

	return response.Success(c, fiber.StatusCreated, "Job created", dto.NewJobResponse(j))
}

func (h *JobsHandler) HandleUpdateJob(c fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return jobNotFound(nil)
	}

	var req jobuc.UpdateInput
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	j, err := h.uc.Update(c.Context(), actor, id, req)
	if err != nil {
		return mapJobUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, "Job updated", dto.NewJobResponse(j))
}

func (h *JobsHandler) HandleDeleteJob(c fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return jobNotFound(nil)
	}

	if err := h.uc.Delete(c.Context(), actor, id); err != nil {
		return mapJobUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, "Job deleted", nil)
}

func (h *JobsHandler) HandleGetJob(c fiber.Ctx) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return jobNotFound(nil)
	}

	j, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return mapJobUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, "Job fetched", dto.NewJobResponse(j))
}

func (h *JobsHandler) HandleListJobs(c fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}

	res, err := h.uc.List(c.Context(), jobuc.ListInput{
		Title:    firstQuery(c, "title", "q_title"),
		Location: firstQuery(c, "location", "q_location"),
		Company:  strings.TrimSpace(c.Query("company_name")),
		Page:     page,
	})
	if err != nil {
		return mapJobUsecaseError(err)
	}

	return response.Paginated(c, "Jobs fetched", dto.NewJobListResponse(res.Items), res.Page, res.Size, res.Total)
}

func firstQuery(c fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(c.Query(k)); v != "" {
			return v
		}
	}
	return ""
}

func jobNotFound(cause error) *middleware.AppError {
	return middleware.NewAppError(fiber.StatusNotFound, "Job not found", []string{"not found"}, cause)
}

func mapJobUsecaseError(err error) error {
	switch {
	case errors.Is(err, jobuc.ErrNotFound):
		return jobNotFound(err)
	case errors.Is(err, jobuc.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Unauthorized access", []string{"unauthorized"}, err)
	case errors.Is(err, jobuc.ErrInvalidTransition):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid status transition", []string{"invalid status transition"}, err)
	case errors.Is(err, jobuc.ErrValidation):
		return validationError(err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
