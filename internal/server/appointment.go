package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	appointmentdomain "github.com/smallbiznis/faktura/internal/appointment/domain"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

type appointmentRequest struct {
	CustomerID               string    `json:"customer_id"`
	OperatorID               string    `json:"operator_id"`
	Title                    string    `json:"title"`
	Notes                    string    `json:"notes"`
	StartAt                  time.Time `json:"start_at"`
	EndAt                    time.Time `json:"end_at"`
	EstimatedDurationMinutes int64     `json:"estimated_duration_minutes"`
	ServiceIDs               []string  `json:"service_ids"`
	Status                   string    `json:"status"`
}

func (s *Server) CreateAppointment(c *gin.Context) {
	var req appointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.appointmentSvc.Create(c.Request.Context(), appointmentdomain.CreateAppointmentRequest{
		CustomerID:        req.CustomerID,
		OperatorID:        req.OperatorID,
		Title:             req.Title,
		Notes:             req.Notes,
		StartAt:           req.StartAt,
		EndAt:             req.EndAt,
		EstimatedDuration: time.Duration(req.EstimatedDurationMinutes) * time.Minute,
		ServiceIDs:        req.ServiceIDs,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateAppointment(c *gin.Context) {
	var req appointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.appointmentSvc.Update(c.Request.Context(), appointmentdomain.UpdateAppointmentRequest{
		ID:                strings.TrimSpace(c.Param("id")),
		Title:             req.Title,
		Notes:             req.Notes,
		StartAt:           req.StartAt,
		EndAt:             req.EndAt,
		EstimatedDuration: time.Duration(req.EstimatedDurationMinutes) * time.Minute,
		ServiceIDs:        req.ServiceIDs,
		Status:            appointmentdomain.Status(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ConfirmAppointment(c *gin.Context) {
	resp, err := s.appointmentSvc.Confirm(c.Request.Context(), appointmentdomain.GetAppointmentRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListAppointments(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID string `form:"customer_id"`
		Status     string `form:"status"`
		From       string `form:"from"`
		To         string `form:"to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}

	to, err := parseOptionalTime(query.To, true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.appointmentSvc.List(c.Request.Context(), appointmentdomain.ListAppointmentRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		CustomerID: strings.TrimSpace(query.CustomerID),
		Status:     strings.TrimSpace(query.Status),
		From:       from,
		To:         to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAppointmentByID(c *gin.Context) {
	resp, err := s.appointmentSvc.GetByID(c.Request.Context(), appointmentdomain.GetAppointmentRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteAppointment(c *gin.Context) {
	err := s.appointmentSvc.Delete(c.Request.Context(), appointmentdomain.GetAppointmentRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
