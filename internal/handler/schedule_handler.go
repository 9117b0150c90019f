package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable/internal/dto"
	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/pkg/response"
)

type scheduleRunner interface {
	Solve(ctx context.Context, req dto.SolveRequest) (*dto.SolveResponse, error)
	EnqueueSolve(ctx context.Context, req dto.SolveRequest) (*dto.JobEnqueuedResponse, error)
	Job(ctx context.Context, id string) (*models.SolveJob, error)
	Assignments(ctx context.Context) (*models.TimetableView, error)
	ClassTimetable(ctx context.Context, classID string) (*models.TimetableGrid, error)
	TeacherTimetable(ctx context.Context, teacherID string) (*models.TimetableGrid, error)
}

// ScheduleHandler exposes solve and timetable view endpoints.
type ScheduleHandler struct {
	service scheduleRunner
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Solve godoc
// @Summary Solve the timetable synchronously
// @Description Runs the search and retains the solution on success. 409 when no schedule satisfies the constraints, 422 when the dataset is invalid, 408 when a limit aborted the search.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.SolveRequest false "Optional solve limits"
// @Success 200 {object} response.Envelope
// @Failure 408 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /schedule/solve [post]
func (h *ScheduleHandler) Solve(c *gin.Context) {
	var req dto.SolveRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Solve(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// EnqueueJob godoc
// @Summary Enqueue an asynchronous solve
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.SolveRequest false "Optional solve limits"
// @Success 202 {object} response.Envelope
// @Router /schedule/jobs [post]
func (h *ScheduleHandler) EnqueueJob(c *gin.Context) {
	var req dto.SolveRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	job, err := h.service.EnqueueSolve(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// Job godoc
// @Summary Solve job status
// @Tags Schedule
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/jobs/{id} [get]
func (h *ScheduleHandler) Job(c *gin.Context) {
	job, err := h.service.Job(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Assignments godoc
// @Summary Flat assignment rows of the latest timetable
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/assignments [get]
func (h *ScheduleHandler) Assignments(c *gin.Context) {
	view, err := h.service.Assignments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// ClassTimetable godoc
// @Summary Weekly grid for one class
// @Tags Schedule
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/classes/{id} [get]
func (h *ScheduleHandler) ClassTimetable(c *gin.Context) {
	grid, err := h.service.ClassTimetable(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// TeacherTimetable godoc
// @Summary Weekly grid for one teacher
// @Tags Schedule
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/teachers/{id} [get]
func (h *ScheduleHandler) TeacherTimetable(c *gin.Context) {
	grid, err := h.service.TeacherTimetable(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}
