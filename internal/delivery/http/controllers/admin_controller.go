package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "techtalks/internal/delivery/http/helpers"
	"techtalks/internal/delivery/http/middleware"
	"techtalks/internal/domain"
	"techtalks/internal/metrics"
)

// UpdateStatusRequest is the request body for PATCH /api/admin/submissions/{id}/status
type UpdateStatusRequest struct {
	Status          string  `json:"status" validate:"required,oneof=approved rejected"`
	RejectionReason *string `json:"rejection_reason" validate:"omitempty,max=1000"`
}

// Validate implements Validator.
func (u UpdateStatusRequest) Validate() []string {
	if u.Status == string(domain.StatusRejected) && (u.RejectionReason == nil || strings.TrimSpace(*u.RejectionReason) == "") {
		return []string{"Alasan penolakan wajib diisi"}
	}
	return nil
}

// CreateAdminRequest is the request body for POST /api/admin/admins
type CreateAdminRequest struct {
	Name            string `json:"name" validate:"required,notblank,max=200"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=72,password_strength"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"omitempty,oneof=admin superadmin"`
}

// MessageResponse carries a confirmation shown to the admin.
type MessageResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user,omitempty"`
}

type AdminController struct {
	Logger      *slog.Logger
	Submissions domain.SubmissionService
	Auth        domain.AuthService
}

func NewAdminController(logger *slog.Logger, submissions domain.SubmissionService, auth domain.AuthService) *AdminController {
	return &AdminController{
		Logger:      logger,
		Submissions: submissions,
		Auth:        auth,
	}
}

// ListSubmissions godoc
// @Summary All submissions
// @Description Every submission, newest first. Optional status filter.
// @Tags admin
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Success 200 {object} helpers.APIResponse "data is an array of submissions"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/submissions [get]
func (c *AdminController) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	filter := domain.SubmissionStatus(r.URL.Query().Get("status"))
	if filter != "" && !filter.Valid() {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "status must be pending, approved or rejected")
		return
	}
	subs, err := c.Submissions.GetAllSubmissions(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "failed to load submissions")
		return
	}
	out := make([]*domain.Submission, 0, len(subs))
	for _, s := range subs {
		if filter == "" || s.Status == filter {
			out = append(out, s)
		}
	}
	h.WriteJSONSuccess(w, http.StatusOK, out)
}

// UpdateStatus godoc
// @Summary Approve or reject a submission
// @Description Set status to approved or rejected. Rejection requires a reason; approval clears it. Approving into a slot already held by another approved submission fails with 409.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param body body UpdateStatusRequest true "Decision"
// @Success 200 {object} helpers.APIResponse "data contains the updated submission"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/submissions/{id}/status [patch]
func (c *AdminController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.WriteUnauthorized(w, r, "login required")
		return
	}
	id, ok := h.PathUUID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	status := domain.SubmissionStatus(req.Status)
	updated, err := c.Submissions.UpdateSubmissionStatus(r.Context(), id, status, req.RejectionReason, identity.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "submission not found")
		case errors.Is(err, domain.ErrSlotTaken):
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "Jadwal ini sudah dipakai sesi lain yang disetujui")
		case errors.Is(err, domain.ErrInvalidStatus):
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "failed to update status")
		}
		return
	}
	metrics.RecordSubmissionDecision(string(status))
	h.WriteJSONSuccess(w, http.StatusOK, updated)
}

// History godoc
// @Summary Submission status history
// @Description Every status change of a submission, oldest first.
// @Tags admin
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} helpers.APIResponse "data is an array of status changes"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/submissions/{id}/history [get]
func (c *AdminController) History(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathUUID(w, r, "id")
	if !ok {
		return
	}
	history, err := c.Submissions.GetStatusHistory(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "submission not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "failed to load history")
		return
	}
	if history == nil {
		history = []*domain.StatusChange{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, history)
}

// ListAdmins godoc
// @Summary List admins
// @Description Admin and superadmin accounts, oldest first. Superadmin only.
// @Tags admin
// @Produce json
// @Success 200 {object} helpers.APIResponse "data is an array of users"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/admins [get]
func (c *AdminController) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := c.Auth.ListAdmins(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "failed to load admins")
		return
	}
	if admins == nil {
		admins = []*domain.User{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, admins)
}

// CreateAdmin godoc
// @Summary Add an admin
// @Description Create an admin account. Role defaults to admin. Superadmin only.
// @Tags admin
// @Accept json
// @Produce json
// @Param body body CreateAdminRequest true "Admin data"
// @Success 201 {object} helpers.APIResponse "data contains message and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/admins [post]
func (c *AdminController) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	role := domain.RoleAdmin
	if req.Role != "" {
		role = domain.Role(req.Role)
	}
	user, err := c.Auth.CreateAdmin(r.Context(), req.Email, req.Password, strings.TrimSpace(req.Name), role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "Email sudah terdaftar")
		case errors.Is(err, domain.ErrInvalidRole):
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "failed to create admin")
		}
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, MessageResponse{Message: "Admin berhasil ditambahkan", User: user})
}

// DeleteAdmin godoc
// @Summary Remove an admin
// @Description Delete an admin account. Superadmins cannot be deleted and nobody can delete themselves. Superadmin only.
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} helpers.APIResponse "data.message"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/admin/admins/{id} [delete]
func (c *AdminController) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.WriteUnauthorized(w, r, "login required")
		return
	}
	id, ok := h.PathUUID(w, r, "id")
	if !ok {
		return
	}
	if id == identity.ID {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "Tidak dapat menghapus akun sendiri")
		return
	}
	target, err := c.Auth.GetUser(r.Context(), id)
	if err != nil {
		c.writeUserError(w, r, err)
		return
	}
	switch target.Role {
	case domain.RoleSuperAdmin:
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "Superadmin tidak dapat dihapus")
		return
	case domain.RoleAdmin:
	default:
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "admin not found")
		return
	}
	if err := c.Auth.DeleteUser(r.Context(), id); err != nil {
		c.writeUserError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, MessageResponse{Message: "Admin berhasil dihapus"})
}

func (c *AdminController) writeUserError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrUserNotFound) {
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "admin not found")
		return
	}
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal error")
}
