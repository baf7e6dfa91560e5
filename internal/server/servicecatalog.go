package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/faktura/internal/servicecatalog/domain"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

// Durations cross the API as whole minutes.
type serviceDefinitionRequest struct {
	Name                     string                       `json:"name"`
	Description              string                       `json:"description"`
	ReferenceDurationMinutes int64                        `json:"reference_duration_minutes"`
	FlatFee                  decimal.Decimal              `json:"flat_fee"`
	FlatFeeThresholdMinutes  int64                        `json:"flat_fee_threshold_minutes"`
	OverageRate15Min         decimal.Decimal              `json:"overage_rate_15min"`
	OnSite                   bool                         `json:"on_site"`
	Surcharge                *catalogdomain.SurchargeRule `json:"surcharge"`
	TaxCode                  string                       `json:"tax_code"`
	Unit                     string                       `json:"unit"`
}

func (s *Server) CreateService(c *gin.Context) {
	var req serviceDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateServiceRequest{
		Name:              req.Name,
		Description:       req.Description,
		ReferenceDuration: time.Duration(req.ReferenceDurationMinutes) * time.Minute,
		FlatFee:           req.FlatFee,
		FlatFeeThreshold:  time.Duration(req.FlatFeeThresholdMinutes) * time.Minute,
		OverageRate15Min:  req.OverageRate15Min,
		OnSite:            req.OnSite,
		Surcharge:         req.Surcharge,
		TaxCode:           catalogdomain.TaxCode(req.TaxCode),
		Unit:              catalogdomain.DisplayUnit(req.Unit),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateService(c *gin.Context) {
	var req serviceDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.Update(c.Request.Context(), catalogdomain.UpdateServiceRequest{
		ID:                strings.TrimSpace(c.Param("id")),
		Name:              req.Name,
		Description:       req.Description,
		ReferenceDuration: time.Duration(req.ReferenceDurationMinutes) * time.Minute,
		FlatFee:           req.FlatFee,
		FlatFeeThreshold:  time.Duration(req.FlatFeeThresholdMinutes) * time.Minute,
		OverageRate15Min:  req.OverageRate15Min,
		OnSite:            req.OnSite,
		Surcharge:         req.Surcharge,
		TaxCode:           catalogdomain.TaxCode(req.TaxCode),
		Unit:              catalogdomain.DisplayUnit(req.Unit),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListServices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name    string `form:"name"`
		Code    string `form:"code"`
		TaxCode string `form:"tax_code"`
		OnSite  string `form:"on_site"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	onSite, err := parseOptionalBool(query.OnSite)
	if err != nil {
		AbortWithError(c, newValidationError("on_site", "invalid_on_site", "invalid on_site"))
		return
	}

	resp, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListServiceRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		Name:      strings.TrimSpace(query.Name),
		Code:      strings.TrimSpace(query.Code),
		TaxCode:   strings.TrimSpace(query.TaxCode),
		OnSite:    onSite,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetServiceByID(c *gin.Context) {
	resp, err := s.catalogSvc.GetByID(c.Request.Context(), catalogdomain.GetServiceRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteService(c *gin.Context) {
	if err := s.catalogSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
