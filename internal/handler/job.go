package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/jobboard/internal/apperror"
	"github.com/sakif/jobboard/internal/auth"
	"github.com/sakif/jobboard/internal/model"
	"github.com/sakif/jobboard/internal/service"
)

// JobHandler serves the public listing routes under /api/jobs and the
// owner routes under /api/my/jobs.
type JobHandler struct {
	jobs      *service.JobService
	validator *Validator
	logger    *slog.Logger
}

func NewJobHandler(jobs *service.JobService, v *Validator, logger *slog.Logger) *JobHandler {
	return &JobHandler{jobs: jobs, validator: v, logger: logger}
}

type jobRequest struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Location     string   `json:"location" validate:"required,max=200"`
	Description  string   `json:"description" validate:"max=20000"`
	Requirements string   `json:"requirements" validate:"max=20000"`
	Type         string   `json:"type" validate:"required,oneof=full_time part_time contract temporary"`
	Department   *string  `json:"department" validate:"omitempty,max=200"`
	PayRange     *string  `json:"payRange" validate:"omitempty,max=200"`
	Benefits     *string  `json:"benefits" validate:"omitempty,max=20000"`
	Status       string   `json:"status" validate:"omitempty,oneof=active filled closed archived"`
	ClosingDate  *Date    `json:"closingDate"`
	Tags         []string `json:"tags" validate:"max=20,dive,max=50"`
}

func (req jobRequest) toModel() model.Job {
	return model.Job{
		Title:        req.Title,
		Location:     req.Location,
		Description:  req.Description,
		Requirements: req.Requirements,
		Type:         model.JobType(req.Type),
		Department:   req.Department,
		PayRange:     req.PayRange,
		Benefits:     req.Benefits,
		Status:       model.JobStatus(req.Status),
		ClosingDate:  req.ClosingDate.Ptr(),
		Tags:         req.Tags,
	}
}

// jobPatchRequest mirrors model.JobPatch with a lenient closing date.
type jobPatchRequest struct {
	Title        *string          `json:"title"`
	Location     *string          `json:"location"`
	Description  *string          `json:"description"`
	Requirements *string          `json:"requirements"`
	Type         *model.JobType   `json:"type"`
	Department   *string          `json:"department"`
	PayRange     *string          `json:"payRange"`
	Benefits     *string          `json:"benefits"`
	Status       *model.JobStatus `json:"status"`
	ClosingDate  *Date            `json:"closingDate"`
	Tags         *[]string        `json:"tags"`
}

func (req jobPatchRequest) toPatch() model.JobPatch {
	return model.JobPatch{
		Title:        req.Title,
		Location:     req.Location,
		Description:  req.Description,
		Requirements: req.Requirements,
		Type:         req.Type,
		Department:   req.Department,
		PayRange:     req.PayRange,
		Benefits:     req.Benefits,
		Status:       req.Status,
		ClosingDate:  req.ClosingDate.Ptr(),
		Tags:         req.Tags,
	}
}

// HandleList returns active listings.
//
// HTTP: GET /api/jobs
func (h *JobHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.ListPublic(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// HandleGet returns one active listing.
//
// HTTP: GET /api/jobs/{id}
func (h *JobHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	job, err := h.jobs.GetPublic(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// HandleListMine returns the caller's listings in every status.
//
// HTTP: GET /api/my/jobs
func (h *JobHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperror.Unauthorized("Authentication required"))
		return
	}
	jobs, err := h.jobs.ListMine(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// HandleCreate posts a listing owned by the caller.
//
// HTTP: POST /api/my/jobs
func (h *JobHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperror.Unauthorized("Authentication required"))
		return
	}
	var req jobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	job, err := h.jobs.Create(r.Context(), userID, req.toModel())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// HandleUpdate applies a partial update. Only fields present in the body
// change.
//
// HTTP: PATCH /api/my/jobs/{id}
func (h *JobHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperror.Unauthorized("Authentication required"))
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req jobPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	job, err := h.jobs.Update(r.Context(), userID, id, req.toPatch())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// HandleDelete removes a listing.
//
// HTTP: DELETE /api/my/jobs/{id}
func (h *JobHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperror.Unauthorized("Authentication required"))
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.jobs.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
