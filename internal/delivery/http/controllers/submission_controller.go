package controllers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	h "techtalks/internal/delivery/http/helpers"
	"techtalks/internal/delivery/http/middleware"
	"techtalks/internal/domain"
	"techtalks/internal/metrics"
)

// multipartOverhead is the allowance for text fields on top of the photo size.
const multipartOverhead = 1 << 20

// User-facing messages for the speaker registration form.
const (
	MsgAllFieldsRequired = "Semua kolom wajib diisi"
	MsgPhotoRequired     = "Foto pembicara wajib diunggah"
	MsgPhotoNotImage     = "Foto pembicara harus berupa gambar"
	MsgSlotTaken         = "Jadwal yang dipilih sudah terisi. Mohon pilih waktu lain."
	MsgInvalidCategory   = "Kategori topik tidak valid"
)

// SubmissionForm is the multipart body of POST /api/submissions. The photo travels as the "photo" file part.
type SubmissionForm struct {
	FullName           string `form:"fullName" validate:"max=200"`
	Email              string `form:"email" validate:"omitempty,email,max=254"`
	Phone              string `form:"whatsapp" validate:"max=32"`
	RoleTitle          string `form:"role" validate:"max=200"`
	Institution        string `form:"institution" validate:"max=200"`
	Biography          string `form:"biography" validate:"max=5000"`
	TopicTitle         string `form:"topicTitle" validate:"max=300"`
	TopicCategory      string `form:"topicCategory" validate:"max=100"`
	TopicCategoryOther string `form:"topicCategoryOther" validate:"max=100"`
	Description        string `form:"description" validate:"max=5000"`
	Date               string `form:"date" validate:"omitempty,event_date"`
	Time               string `form:"time" validate:"omitempty,time_slot"`
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}

func parseSubmissionForm(r *http.Request) SubmissionForm {
	return SubmissionForm{
		FullName:           formValue(r, "fullName"),
		Email:              formValue(r, "email"),
		Phone:              formValue(r, "whatsapp"),
		RoleTitle:          formValue(r, "role"),
		Institution:        formValue(r, "institution"),
		Biography:          formValue(r, "biography"),
		TopicTitle:         formValue(r, "topicTitle"),
		TopicCategory:      formValue(r, "topicCategory"),
		TopicCategoryOther: formValue(r, "topicCategoryOther"),
		Description:        formValue(r, "description"),
		Date:               formValue(r, "date"),
		Time:               formValue(r, "time"),
	}
}

// Category resolves the free-text category when "Lainnya" is chosen.
func (f SubmissionForm) Category() string {
	if f.TopicCategory == domain.TopicCategoryOther {
		return f.TopicCategoryOther
	}
	return f.TopicCategory
}

// Validate implements Validator. Email is optional and defaults to the session's email.
func (f SubmissionForm) Validate() []string {
	required := []string{
		f.FullName, f.Phone, f.RoleTitle, f.Institution, f.Biography,
		f.TopicTitle, f.Category(), f.Description, f.Date, f.Time,
	}
	if slices.Contains(required, "") {
		return []string{MsgAllFieldsRequired}
	}
	if f.TopicCategory != domain.TopicCategoryOther && !slices.Contains(domain.TopicCategories, f.TopicCategory) {
		return []string{MsgInvalidCategory}
	}
	return nil
}

// BookedSlotsResponse feeds the registration form's slot picker.
type BookedSlotsResponse struct {
	Booked     map[string][]string `json:"booked"`
	TimeSlots  []string            `json:"time_slots"`
	Categories []string            `json:"categories"`
}

// AvailabilityQuery is the query of GET /api/submissions/availability
type AvailabilityQuery struct {
	Date string `form:"date" validate:"required,event_date"`
	Time string `form:"time" validate:"required,time_slot"`
}

type SubmissionController struct {
	Logger        *slog.Logger
	Service       domain.SubmissionService
	MaxPhotoBytes int64
}

func NewSubmissionController(logger *slog.Logger, svc domain.SubmissionService, maxPhotoBytes int64) *SubmissionController {
	return &SubmissionController{
		Logger:        logger,
		Service:       svc,
		MaxPhotoBytes: maxPhotoBytes,
	}
}

// BookedSlots godoc
// @Summary Booked slots
// @Description Approved (date, time) pairs grouped by date, plus the bookable time slots and topic categories.
// @Tags submissions
// @Produce json
// @Success 200 {object} helpers.APIResponse "data is BookedSlotsResponse"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/submissions/booked-slots [get]
func (c *SubmissionController) BookedSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := c.Service.GetBookedSlots(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "failed to load booked slots")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, BookedSlotsResponse{
		Booked:     domain.GroupSlotsByDate(slots),
		TimeSlots:  domain.TimeSlots,
		Categories: append(slices.Clone(domain.TopicCategories), domain.TopicCategoryOther),
	})
}

// Availability godoc
// @Summary Check a slot
// @Description Report whether no approved submission holds the given date and time.
// @Tags submissions
// @Produce json
// @Param date query string true "Event date (YYYY-MM-DD)"
// @Param time query string true "Start time (HH:MM)"
// @Success 200 {object} helpers.APIResponse "data.available"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/submissions/availability [get]
func (c *SubmissionController) Availability(w http.ResponseWriter, r *http.Request) {
	q := AvailabilityQuery{
		Date: strings.TrimSpace(r.URL.Query().Get("date")),
		Time: strings.TrimSpace(r.URL.Query().Get("time")),
	}
	if errs := h.ValidateStruct(&q); len(errs) > 0 {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, strings.Join(errs, "; "))
		return
	}
	available, err := c.Service.IsSlotAvailable(r.Context(), q.Date, q.Time)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"available": available})
}

// Create godoc
// @Summary Submit a talk
// @Description Multipart form from the speaker registration page. The submission is stored as pending; the photo is kept as a data URI.
// @Tags submissions
// @Accept multipart/form-data
// @Produce json
// @Param fullName formData string true "Speaker name"
// @Param email formData string false "Contact email; defaults to the account email"
// @Param whatsapp formData string true "WhatsApp number"
// @Param role formData string true "Job title"
// @Param institution formData string true "Institution"
// @Param biography formData string true "Biography"
// @Param topicTitle formData string true "Talk title"
// @Param topicCategory formData string true "Category, or Lainnya"
// @Param topicCategoryOther formData string false "Category when topicCategory is Lainnya"
// @Param description formData string true "Talk description"
// @Param date formData string true "Event date (YYYY-MM-DD)"
// @Param time formData string true "Start time (10:00, 13:00, 16:00 or 20:00)"
// @Param photo formData file true "Speaker photo"
// @Success 201 {object} helpers.APIResponse "data contains the created submission"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/submissions [post]
func (c *SubmissionController) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.WriteUnauthorized(w, r, "login required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, c.MaxPhotoBytes+multipartOverhead)
	if err := r.ParseMultipartForm(c.MaxPhotoBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, c.photoTooLargeMessage())
			return
		}
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	form := parseSubmissionForm(r)
	if errs := h.ValidateStruct(&form); len(errs) > 0 {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, strings.Join(errs, "; "))
		return
	}
	photo, msg, err := c.readPhoto(r)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "failed to read photo")
		return
	}
	if msg != "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, msg)
		return
	}

	available, err := c.Service.IsSlotAvailable(r.Context(), form.Date, form.Time)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	if !available {
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, MsgSlotTaken)
		return
	}

	email := form.Email
	if email == "" {
		email = identity.Email
	}
	created, err := c.Service.CreateSubmission(r.Context(), &domain.Submission{
		SpeakerProfile: domain.SpeakerProfile{
			FullName:    form.FullName,
			Email:       email,
			Phone:       form.Phone,
			RoleTitle:   form.RoleTitle,
			Institution: form.Institution,
			Biography:   form.Biography,
			Photo:       photo,
		},
		TopicCategory: form.Category(),
		TopicTitle:    form.TopicTitle,
		Description:   form.Description,
		EventDate:     form.Date,
		EventTime:     form.Time,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	metrics.RecordSubmissionCreated()
	h.WriteJSONSuccess(w, http.StatusCreated, created)
}

// Mine godoc
// @Summary My submissions
// @Description Submissions whose speaker email matches the session's email, newest first.
// @Tags submissions
// @Produce json
// @Success 200 {object} helpers.APIResponse "data is an array of submissions"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/submissions/mine [get]
func (c *SubmissionController) Mine(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.WriteUnauthorized(w, r, "login required")
		return
	}
	subs, err := c.Service.GetSpeakerSubmissions(r.Context(), identity.Email)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	if subs == nil {
		subs = []*domain.Submission{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, subs)
}

// readPhoto returns the photo as a data URI. A non-empty msg is a user error.
func (c *SubmissionController) readPhoto(r *http.Request) (dataURI, msg string, err error) {
	file, header, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return "", MsgPhotoRequired, nil
	}
	if err != nil {
		return "", "", fmt.Errorf("open photo: %w", err)
	}
	defer file.Close()
	if header.Size == 0 {
		return "", MsgPhotoRequired, nil
	}
	if header.Size > c.MaxPhotoBytes {
		return "", c.photoTooLargeMessage(), nil
	}
	data, err := io.ReadAll(io.LimitReader(file, c.MaxPhotoBytes+1))
	if err != nil {
		return "", "", fmt.Errorf("read photo: %w", err)
	}
	if int64(len(data)) > c.MaxPhotoBytes {
		return "", c.photoTooLargeMessage(), nil
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", MsgPhotoNotImage, nil
	}
	return "data:" + mtype.String() + ";base64," + base64.StdEncoding.EncodeToString(data), "", nil
}

func (c *SubmissionController) photoTooLargeMessage() string {
	return fmt.Sprintf("Ukuran foto maksimal %d KB", c.MaxPhotoBytes/1024)
}

func (c *SubmissionController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidSlot):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "tanggal atau waktu tidak valid")
	case errors.Is(err, domain.ErrSlotTaken):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, MsgSlotTaken)
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal error")
	}
}
