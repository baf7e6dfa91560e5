package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	invoicingdomain "github.com/smallbiznis/faktura/internal/invoicing/domain"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

type renderedServiceRequest struct {
	ServiceID       string           `json:"service_id"`
	DurationMinutes int64            `json:"duration_minutes"`
	Quantity        decimal.Decimal  `json:"quantity"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
}

type createInvoiceRequest struct {
	CustomerID          string                   `json:"customer_id"`
	Rendered            []renderedServiceRequest `json:"rendered"`
	SurchargeQty        decimal.Decimal          `json:"surcharge_qty"`
	OperatorInitials    string                   `json:"operator_initials"`
	DiscountPercent     *decimal.Decimal         `json:"discount_percent"`
	EarlyPaymentPercent *decimal.Decimal         `json:"early_payment_percent"`
	SendEmail           bool                     `json:"send_email"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rendered := make([]invoicedomain.RenderedServiceInput, 0, len(req.Rendered))
	for _, r := range req.Rendered {
		rendered = append(rendered, invoicedomain.RenderedServiceInput{
			ServiceID:       r.ServiceID,
			Duration:        time.Duration(r.DurationMinutes) * time.Minute,
			Quantity:        r.Quantity,
			DiscountPercent: r.DiscountPercent,
		})
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		CustomerID:          req.CustomerID,
		Rendered:            rendered,
		SurchargeQty:        req.SurchargeQty,
		OperatorInitials:    req.OperatorInitials,
		DiscountPercent:     req.DiscountPercent,
		EarlyPaymentPercent: req.EarlyPaymentPercent,
		SendEmail:           req.SendEmail,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status     string `form:"status"`
		CustomerID string `form:"customer_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		Status:     strings.TrimSpace(query.Status),
		CustomerID: strings.TrimSpace(query.CustomerID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	resp, err := s.invoiceSvc.MarkPaid(c.Request.Context(), invoicedomain.GetInvoiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateInvoiceStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.UpdateStatus(c.Request.Context(), invoicedomain.UpdateStatusRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Status: invoicingdomain.PaymentStatus(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
