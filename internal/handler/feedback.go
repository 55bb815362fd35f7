package handler

import (
	"context"
	"net/http"

	"github.com/fixora/fixora-service/internal/errs"
	"github.com/fixora/fixora-service/internal/model"
	"github.com/fixora/fixora-service/internal/service"
	"github.com/gin-gonic/gin"
)

// ReportGetter loads the report a feedback request is opened for.
type ReportGetter interface {
	Get(ctx context.Context, id string) (*model.Report, error)
}

// Backfiller runs the feedback backfill.
type Backfiller interface {
	BackfillFeedbackRequests(ctx context.Context) (service.BackfillResult, error)
	BackfillFeedbackForOrganization(ctx context.Context, organizationID string) (service.BackfillResult, error)
}

type FeedbackHandler struct {
	svc      service.FeedbackServicer
	reports  ReportGetter
	backfill Backfiller
}

func NewFeedbackHandler(svc service.FeedbackServicer, reports ReportGetter, backfill Backfiller) *FeedbackHandler {
	return &FeedbackHandler{svc: svc, reports: reports, backfill: backfill}
}

type createFeedbackRequestBody struct {
	UserID string `json:"userId"`
}

// CreateRequest opens a feedback request for the report in the path, which must be resolved.
func (h *FeedbackHandler) CreateRequest(c *gin.Context) {
	var req createFeedbackRequestBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body"})
			return
		}
	}
	reportID := c.Param("id")
	r, err := h.reports.Get(c.Request.Context(), reportID)
	if err != nil {
		writeFailure(c, err)
		return
	}
	if r.Status != model.ReportStatusResolved {
		writeFailure(c, errs.ErrReportNotResolved)
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = r.UserID
	}
	fr, err := h.svc.CreateFeedbackRequest(c.Request.Context(), reportID, userID, *r)
	if err != nil {
		writeFailure(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "feedbackRequestId": fr.ID})
}

type submitFeedbackBody struct {
	ReportID         string   `json:"reportId" binding:"required"`
	IsResolved       *bool    `json:"isResolved" binding:"required"`
	Rating           int      `json:"rating"`
	Comment          string   `json:"comment"`
	AdditionalImages []string `json:"additionalImages"`
	WouldRecommend   bool     `json:"wouldRecommend"`
	ShouldResubmit   bool     `json:"shouldResubmit"`
}

func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req submitFeedbackBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body"})
		return
	}
	res, err := h.svc.SubmitFeedback(c.Request.Context(), c.Param("id"), req.ReportID, service.FeedbackSubmission{
		IsResolved:       *req.IsResolved,
		Rating:           req.Rating,
		Comment:          req.Comment,
		AdditionalImages: req.AdditionalImages,
		WouldRecommend:   req.WouldRecommend,
	}, req.ShouldResubmit)
	if err != nil {
		writeFailure(c, err)
		return
	}
	body := gin.H{
		"success":        true,
		"isResolved":     res.IsResolved,
		"shouldResubmit": res.ShouldResubmit,
	}
	if res.NewReportID != "" {
		body["newReportId"] = res.NewReportID
	}
	c.JSON(http.StatusOK, body)
}

func (h *FeedbackHandler) Pending(c *gin.Context) {
	items := h.svc.GetPendingFeedbackRequests(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"feedbackRequests": items})
}

func (h *FeedbackHandler) Reminder(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.CheckAndRemindPendingFeedback(c.Request.Context(), c.Param("id")))
}

func (h *FeedbackHandler) OrganizationStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.GetOrganizationFeedbackStats(c.Request.Context(), c.Param("id")))
}

func (h *FeedbackHandler) ReportFeedback(c *gin.Context) {
	fr := h.svc.GetReportFeedback(c.Request.Context(), c.Param("id"))
	if fr == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no feedback for report"})
		return
	}
	c.JSON(http.StatusOK, fr)
}

// StaffFeedback expects exactly one of staff_id and team_id.
func (h *FeedbackHandler) StaffFeedback(c *gin.Context) {
	items := h.svc.GetStaffFeedback(c.Request.Context(), c.Query("staff_id"), c.Query("team_id"))
	c.JSON(http.StatusOK, gin.H{"feedback": items})
}

func (h *FeedbackHandler) Backfill(c *gin.Context) {
	var (
		res service.BackfillResult
		err error
	)
	if org := c.Query("organization_id"); org != "" {
		res, err = h.backfill.BackfillFeedbackForOrganization(c.Request.Context(), org)
	} else {
		res, err = h.backfill.BackfillFeedbackRequests(c.Request.Context())
	}
	if err != nil {
		writeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"created": res.Created,
		"skipped": res.Skipped,
		"errors":  res.Errors,
		"total":   res.Total,
	})
}
