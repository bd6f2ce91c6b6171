package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/sakif/jobboard/internal/apperror"
	"github.com/sakif/jobboard/internal/auth"
	"github.com/sakif/jobboard/internal/model"
	"github.com/sakif/jobboard/internal/service"
)

// ApplicationHandler serves the public submit route and the owner review
// routes.
type ApplicationHandler struct {
	apps      *service.ApplicationService
	links     *auth.LinkSigner
	validator *Validator
	logger    *slog.Logger
}

func NewApplicationHandler(apps *service.ApplicationService, links *auth.LinkSigner, v *Validator, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{apps: apps, links: links, validator: v, logger: logger}
}

type applicationRequest struct {
	JobID        model.ID            `json:"jobId" validate:"required"`
	FirstName    string              `json:"firstName" validate:"required,max=100"`
	LastName     string              `json:"lastName" validate:"required,max=100"`
	Email        string              `json:"email" validate:"required,email,max=254"`
	Phone        string              `json:"phone" validate:"required,max=50"`
	Address      *string             `json:"address" validate:"omitempty,max=200"`
	City         *string             `json:"city" validate:"omitempty,max=100"`
	Zip          *string             `json:"zip" validate:"omitempty,max=20"`
	ResumeURL    *string             `json:"resumeUrl" validate:"omitempty,max=500"`
	Experience   *model.Experience   `json:"experience"`
	Education    *model.Education    `json:"education"`
	CoverLetter  *string             `json:"coverLetter"`
	Availability *model.Availability `json:"availability"`
	Shifts       []string            `json:"shifts" validate:"max=10,dive,max=50"`
	StartDate    *Date               `json:"startDate"`
}

func (req applicationRequest) toModel() model.Application {
	return model.Application{
		JobID:        req.JobID.Int64(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		City:         req.City,
		Zip:          req.Zip,
		ResumeURL:    req.ResumeURL,
		Experience:   req.Experience,
		Education:    req.Education,
		CoverLetter:  req.CoverLetter,
		Availability: req.Availability,
		Shifts:       req.Shifts,
		StartDate:    req.StartDate.Ptr(),
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=submitted under_review interviewed accepted rejected"`
}

type applicationDetail struct {
	Application *model.Application `json:"application"`
	Job         *model.Job         `json:"job"`
}

// HandleSubmit accepts an application from the public site. The response
// carries the reference code the applicant uses to follow up.
//
// HTTP: POST /api/applications
func (h *ApplicationHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req applicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	app, err := h.apps.Submit(r.Context(), req.toModel())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

// HandleListMine returns applications across every job the caller owns.
//
// HTTP: GET /api/my/applications
func (h *ApplicationHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperror.Unauthorized("Authentication required"))
		return
	}
	apps, err := h.apps.ListForOwner(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

// HandleListForJob returns applications for one owned job.
//
// HTTP: GET /api/my/jobs/{id}/applications
func (h *ApplicationHandler) HandleListForJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperror.Unauthorized("Authentication required"))
		return
	}
	jobID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	apps, err := h.apps.ListForJob(r.Context(), userID, jobID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

// HandleGet returns one application together with its job.
//
// HTTP: GET /api/my/applications/{id}
func (h *ApplicationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
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
	app, job, err := h.apps.Get(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, applicationDetail{Application: app, Job: job})
}

// HandleUpdateStatus moves an application through review.
//
// HTTP: PATCH /api/my/applications/{id}/status
func (h *ApplicationHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
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
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	app, err := h.apps.UpdateStatus(r.Context(), userID, id, model.ApplicationStatus(req.Status))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// HandleResume redirects the owner to a short-lived signed link for the
// application's resume.
//
// HTTP: GET /api/my/applications/{id}/resume
func (h *ApplicationHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
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
	name, err := h.apps.ResumeFile(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	token, err := h.links.Sign(name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	target := resumePath + url.PathEscape(name) + "?token=" + url.QueryEscape(token)
	http.Redirect(w, r, target, http.StatusFound)
}
