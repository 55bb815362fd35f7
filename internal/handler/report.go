package handler

import (
	"net/http"
	"strconv"

	"github.com/fixora/fixora-service/internal/model"
	"github.com/fixora/fixora-service/internal/repository"
	"github.com/fixora/fixora-service/internal/service"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	svc service.ReportServicer
}

func NewReportHandler(svc service.ReportServicer) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func (h *ReportHandler) Create(c *gin.Context) {
	var req service.CreateReportInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	r, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *ReportHandler) Get(c *gin.Context) {
	r, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReportHandler) List(c *gin.Context) {
	in := service.ListReportsInput{
		ReportFilter: repository.ReportFilter{
			UserID:         c.Query("user_id"),
			OrganizationID: c.Query("organization_id"),
			Status:         model.ReportStatus(c.Query("status")),
			StaffID:        c.Query("staff_id"),
			TeamID:         c.Query("team_id"),
		},
		SortByUrgency: c.Query("sort") == "urgency",
	}
	if in.Status != "" && !in.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			in.Limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			in.Offset = parsed
		}
	}

	items, total, err := h.svc.List(c.Request.Context(), in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reports": items,
		"total":   total,
	})
}

type updateStatusRequest struct {
	Status    string `json:"status" binding:"required"`
	UpdatedBy string `json:"updatedBy"`
}

func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	r, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), model.ReportStatus(req.Status), req.UpdatedBy)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReportHandler) Assign(c *gin.Context) {
	var req service.AssignInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	r, err := h.svc.Assign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type addProofRequest struct {
	StaffName string   `json:"staffName"`
	Images    []string `json:"images" binding:"required,min=1,dive,required"`
}

func (h *ReportHandler) AddProof(c *gin.Context) {
	var req addProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	r, err := h.svc.AddProof(c.Request.Context(), c.Param("id"), req.StaffName, req.Images)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
