// Package handler wires the lifecycle engine, profile aggregator, and
// upload/notification collaborators onto the HTTP surface.
package handler

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"complaintportal/internal/auth"
	"complaintportal/internal/complaint"
	"complaintportal/internal/config"
	"complaintportal/internal/directory"
	"complaintportal/internal/notify"
	"complaintportal/internal/profile"
	"complaintportal/internal/storage"
)

// Directory is the slice of the directory client the handlers need.
type Directory interface {
	Authenticate(ctx context.Context, username, password string) (bool, error)
	Lookup(ctx context.Context, subjectID string) (directory.Record, error)
}

// Notifier is the slice of the dispatcher the feedback endpoint needs.
type Notifier interface {
	FeedbackReceived(ctx context.Context, f notify.Feedback) error
}

// Handler owns the request-level dependencies.
type Handler struct {
	cfg      config.App
	engine   *complaint.Service
	profiles *profile.Service
	dir      Directory
	objects  storage.ObjectStore
	notifier Notifier
	log      *zap.Logger
}

// New creates a handler. objects may be nil, in which case uploads are
// rejected and attachment URLs fall back to path references.
func New(cfg config.App, engine *complaint.Service, profiles *profile.Service, dir Directory, objects storage.ObjectStore, notifier Notifier, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{cfg: cfg, engine: engine, profiles: profiles, dir: dir, objects: objects, notifier: notifier, log: log}
}

// Register mounts all routes. Everything except login sits behind the
// session middleware.
func (h *Handler) Register(r *gin.Engine, sessionMW gin.HandlerFunc) {
	r.POST("/auth/login", h.Login)

	private := r.Group("/", sessionMW)
	private.POST("/auth/logout", h.Logout)
	private.GET("/auth/validate", h.Validate)

	private.POST("/complain/register/:type", h.RegisterComplaint)
	private.GET("/complain/get-complaints/:type", h.ListComplaints)
	private.GET("/complain/get-complaints-date/:type", h.ListComplaintsByDate)
	private.PUT("/complain/update-complaints/:type", h.UpdateComplaint)
	private.DELETE("/complain/delete-complaints/:type", h.DeleteComplaint)
	private.GET("/complain/search/:type", h.SearchComplaint)

	private.GET("/profile", h.Profile)
	private.POST("/feedback", h.Feedback)
}

func (h *Handler) actor(c *gin.Context) (complaint.Actor, bool) {
	claims, ok := auth.FromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "You are not logged in!"})
		return complaint.Actor{}, false
	}
	return complaint.Actor{
		Subject: claims.Subject,
		Email:   claims.Email,
		Staff:   claims.Role == auth.RoleStaff,
	}, true
}

func (h *Handler) category(c *gin.Context) (complaint.Category, bool) {
	cat, ok := complaint.ParseCategory(c.Param("type"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid category"})
		return "", false
	}
	return cat, true
}

// RegisterComplaint accepts a JSON body or a multipart form with an
// "attachments" file field. Files are streamed to the object store before
// the engine sees the submission.
func (h *Handler) RegisterComplaint(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	cat, ok := h.category(c)
	if !ok {
		return
	}

	var sub complaint.Submission
	if strings.Contains(c.ContentType(), "multipart/form-data") {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid multipart form"})
			return
		}
		sub = submissionFromForm(form)
		keys, err := h.storeAttachments(c.Request.Context(), cat, actor.Subject, form.File["attachments"])
		if err != nil {
			h.log.Error("attachment upload failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"message": "attachment upload failed"})
			return
		}
		sub.Attachments = keys
	} else {
		if err := c.ShouldBindJSON(&sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
	}

	created, err := h.engine.Submit(c.Request.Context(), cat, sub, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Complaint registered successfully!",
		"id":      created.ID,
	})
}

// ListComplaints returns the caller's complaints with attachment references
// resolved to fetchable URLs. Staff may list another owner's complaints by
// passing scholarNumber.
func (h *Handler) ListComplaints(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	cat, ok := h.category(c)
	if !ok {
		return
	}

	owner := c.Query("scholarNumber")
	if owner == "" {
		owner = actor.Subject
	}
	found, err := h.engine.ListFor(c.Request.Context(), cat, owner, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": h.views(c.Request.Context(), found)})
}

// ListComplaintsByDate narrows the listing by a createdAt range plus the
// optional complaintType, status, readStatus, and complaintIds filters. Zero
// matches answer 404, matching the portal clients' expectations.
func (h *Handler) ListComplaintsByDate(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	cat, ok := h.category(c)
	if !ok {
		return
	}

	var filter complaint.Filter
	var err error
	filter.Start, err = parseDate(c.Query("startDate"), false)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid startDate"})
		return
	}
	filter.End, err = parseDate(c.Query("endDate"), true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid endDate"})
		return
	}
	filter.ComplainType = c.Query("complaintType")
	if v := c.Query("status"); v != "" {
		status := complaint.Status(v)
		filter.Status = &status
	}
	if v := c.Query("readStatus"); v != "" {
		rs := complaint.ReadStatus(v)
		filter.ReadStatus = &rs
	}
	if v := c.Query("complaintIds"); v != "" {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				filter.IDs = append(filter.IDs, id)
			}
		}
	}

	found, err := h.engine.ListFiltered(c.Request.Context(), cat, actor, filter)
	if err != nil {
		if errors.Is(err, complaint.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "No complaints found."})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": h.views(c.Request.Context(), found)})
}

// UpdateComplaint applies a staff-side partial merge.
func (h *Handler) UpdateComplaint(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	cat, ok := h.category(c)
	if !ok {
		return
	}

	var req struct {
		ComplainID string `json:"complainId"`
		Updates    *struct {
			UpdateFields complaint.UpdateRequest `json:"updateFields"`
		} `json:"updates"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if req.Updates == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide updates!"})
		return
	}
	if req.ComplainID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Complain ID is required!"})
		return
	}

	updated, err := h.engine.Update(c.Request.Context(), cat, req.ComplainID, req.Updates.UpdateFields, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Complaint updated successfully!",
		"data":    h.view(c.Request.Context(), updated),
	})
}

// DeleteComplaint permanently removes a complaint. Staff only.
func (h *Handler) DeleteComplaint(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	cat, ok := h.category(c)
	if !ok {
		return
	}
	id := c.Query("complainId")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Complain ID is required!"})
		return
	}

	if err := h.engine.Delete(c.Request.Context(), cat, id, actor); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Complaint deleted successfully!"})
}

// SearchComplaint is the point lookup behind detail views.
func (h *Handler) SearchComplaint(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	cat, ok := h.category(c)
	if !ok {
		return
	}
	id := c.Query("complainId")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Complain ID is required!"})
		return
	}

	found, err := h.engine.Get(c.Request.Context(), cat, id, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"message":   "success",
		"complaint": h.view(c.Request.Context(), found),
	})
}

// Profile returns directory attributes plus complaint counts.
func (h *Handler) Profile(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	summary, err := h.profiles.Get(c.Request.Context(), actor.Subject)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User details fetched successfully",
		"data":    summary,
	})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	if ve, ok := complaint.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": ve.Reason, "field": ve.Field})
		return
	}
	switch {
	case errors.Is(err, complaint.ErrUnknownCategory):
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid category"})
	case errors.Is(err, complaint.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Complaint not found!"})
	case errors.Is(err, complaint.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "You are not allowed to perform this action"})
	case errors.Is(err, directory.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found!"})
	case errors.Is(err, directory.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Directory service unavailable"})
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error!"})
	}
}

// attachmentView is the response representation of a stored file reference.
type attachmentView struct {
	URL string `json:"url"`
}

// complaintView overrides the stored attachment keys with resolved URLs.
type complaintView struct {
	complaint.Complaint
	Attachments      []attachmentView `json:"attachments"`
	AdminAttachments []attachmentView `json:"AdminAttachments"`
}

func (h *Handler) views(ctx context.Context, list []complaint.Complaint) []complaintView {
	out := make([]complaintView, 0, len(list))
	for _, c := range list {
		out = append(out, h.view(ctx, c))
	}
	return out
}

func (h *Handler) view(ctx context.Context, c complaint.Complaint) complaintView {
	return complaintView{
		Complaint:        c,
		Attachments:      h.resolve(ctx, c.Attachments),
		AdminAttachments: h.resolve(ctx, c.AdminAttachments),
	}
}

func (h *Handler) resolve(ctx context.Context, keys []string) []attachmentView {
	out := make([]attachmentView, 0, len(keys))
	for _, key := range keys {
		if h.objects != nil {
			if u, err := h.objects.ResolveURL(ctx, key); err == nil {
				out = append(out, attachmentView{URL: u})
				continue
			}
		}
		out = append(out, attachmentView{URL: h.cfg.PublicBaseURL + "/" + key})
	}
	return out
}

func (h *Handler) storeAttachments(ctx context.Context, cat complaint.Category, subject string, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if h.objects == nil {
		return nil, errors.New("attachment storage not configured")
	}
	keys := make([]string, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		key := fmt.Sprintf("%s/%s/%s%s",
			strings.ToLower(string(cat)), subject, uuid.NewString(), filepath.Ext(fh.Filename))
		contentType := fh.Header.Get("Content-Type")
		err = h.objects.Put(ctx, key, f, fh.Size, contentType)
		f.Close()
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func submissionFromForm(form *multipart.Form) complaint.Submission {
	get := func(key string) string {
		if vals := form.Value[key]; len(vals) > 0 {
			return vals[0]
		}
		return ""
	}
	return complaint.Submission{
		ScholarNumber: get("scholarNumber"),
		StudentName:   get("studentName"),
		ComplainType:  get("complainType"),
		Description:   get("complainDescription"),
		HostelNumber:  get("hostelNumber"),
		Room:          get("room"),
		Department:    get("department"),
		Stream:        get("stream"),
		Year:          get("year"),
		Landmark:      get("landmark"),
	}
}

// parseDate accepts a date-only or RFC 3339 timestamp. Date-only end bounds
// are pushed to the end of the day so the range is inclusive.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
