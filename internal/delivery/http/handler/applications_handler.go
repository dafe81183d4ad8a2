package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"job-board/internal/delivery/http/dto"
	"job-board/internal/delivery/http/middleware"
	"job-board/internal/pkg/response"
	appuc "job-board/internal/usecase/application"

	"github.com/gofiber/fiber/v3"
)

// MaxResumeBytes bounds the size of an uploaded resume.
const MaxResumeBytes = 5 << 20

type ApplicationsHandler struct {
	uc *appuc.Service
}

type updateStatusRequest struct {
	NewStatus string `json:"new_status"`
}

func NewApplicationsHandler(uc *appuc.Service) *ApplicationsHandler {
	return &ApplicationsHandler{uc: uc}
}

func (h *ApplicationsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/jobs/:id/apply", h.HandleApply)
	r.Get("/me", h.HandleListMine)
	r.Get("/jobs/:id", h.HandleListForJob)
	r.Patch("/:id/status", h.HandleUpdateStatus)
}

func (h *ApplicationsHandler) HandleApply(c fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return jobNotFound(nil)
	}

	in := appuc.ApplyInput{CoverLetter: c.FormValue("cover_letter")}
	if in.CoverLetter == "" {
		in.CoverLetter = c.Query("cover_letter")
	}

	if fh, err := c.FormFile("resume"); err == nil {
		resume, err := readResume(fh)
		if err != nil {
			return err
		}
		in.Resume = resume
	}

	created, err := h.uc.Apply(c.Context(), actor, jobID, in)
	if err != nil {
		return mapApplyError(err)
	}

	return response.Success(c, fiber.StatusCreated, "Applied successfully", dto.ApplyResponse{ApplicationID: created.ID})
}

func readResume(fh *multipart.FileHeader) (*appuc.Resume, error) {
	if fh.Size > MaxResumeBytes {
		return nil, middleware.NewAppError(fiber.StatusRequestEntityTooLarge, "Resume too large", []string{fmt.Sprintf("resume must not exceed %d bytes", MaxResumeBytes)}, nil)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, middleware.NewAppError(fiber.StatusBadRequest, "Bad request", []string{"unreadable resume"}, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxResumeBytes+1))
	if err != nil {
		return nil, middleware.NewAppError(fiber.StatusBadRequest, "Bad request", []string{"unreadable resume"}, err)
	}
	if len(data) > MaxResumeBytes {
		return nil, middleware.NewAppError(fiber.StatusRequestEntityTooLarge, "Resume too large", nil, nil)
	}

	return &appuc.Resume{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

func (h *ApplicationsHandler) HandleListMine(c fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	page, err := parsePage(c)
	if err != nil {
		return err
	}

	order := strings.ToLower(strings.TrimSpace(c.Query("order", "desc")))
	if order != "asc" && order != "desc" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", []string{"order must be asc or desc"}, nil)
	}

	res, err := h.uc.ListMine(c.Context(), actor, appuc.MineInput{
		Company:   strings.TrimSpace(c.Query("company_name")),
		JobStatus: strings.TrimSpace(c.Query("job_status")),
		Statuses:  queryMulti(c, "app_status"),
		SortBy:    strings.TrimSpace(c.Query("sort_by")),
		Order:     order,
		Page:      page,
	})
	if err != nil {
		return mapApplicationUsecaseError(err, "Application not found")
	}

	return response.Paginated(c, "Applications fetched", dto.NewMyApplications(res.Items), res.Page, res.Size, res.Total)
}

func (h *ApplicationsHandler) HandleListForJob(c fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	jobID, ok := pathUUID(c, "id")
	if !ok {
		return jobNotFound(nil)
	}
	page, err := parsePage(c)
	if err != nil {
		return err
	}

	res, err := h.uc.ListForJob(c.Context(), actor, jobID, appuc.ForJobInput{
		Status: strings.TrimSpace(c.Query("status")),
		Page:   page,
	})
	if err != nil {
		return mapApplicationUsecaseError(err, "Job not found")
	}

	return response.Paginated(c, "Applications fetched", dto.NewJobApplications(res.Items), res.Page, res.Size, res.Total)
}

func (h *ApplicationsHandler) HandleUpdateStatus(c fiber.Ctx) error {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		return err
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return middleware.NewAppError(fiber.StatusNotFound, "Application not found", []string{"not found"}, nil)
	}

	var req updateStatusRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	d, err := h.uc.UpdateStatus(c.Context(), actor, id, req.NewStatus)
	if err != nil {
		return mapApplicationUsecaseError(err, "Application not found")
	}

	return response.Success(c, fiber.StatusOK, "Application updated", dto.NewApplicationStatusResponse(d))
}

func mapApplyError(err error) error {
	switch {
	case errors.Is(err, appuc.ErrConflict):
		return middleware.NewAppError(fiber.StatusConflict, "Already applied", []string{"duplicate application"}, err)
	case errors.Is(err, appuc.ErrUnsupportedFormat):
		return middleware.NewAppError(fiber.StatusUnsupportedMediaType, "Unsupported file format", []string{"only pdf and docx allowed"}, err)
	default:
		return mapApplicationUsecaseError(err, "Job not found")
	}
}

func mapApplicationUsecaseError(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, appuc.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, notFoundMsg, []string{"not found"}, err)
	case errors.Is(err, appuc.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Unauthorized access", []string{"unauthorized"}, err)
	case errors.Is(err, appuc.ErrInvalidStatus):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid status", []string{"invalid status"}, err)
	case errors.Is(err, appuc.ErrValidation):
		return validationError(err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
