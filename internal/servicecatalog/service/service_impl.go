package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/servicecatalog/domain"
	"github.com/smallbiznis/faktura/pkg/db"
	"github.com/smallbiznis/faktura/pkg/db/option"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
	"github.com/smallbiznis/faktura/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Store repository.Repository[domain.ServiceDefinition]
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	store repository.Repository[domain.ServiceDefinition]
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("servicecatalog.service"),
		genID: p.GenID,
		clock: p.Clock,
		store: p.Store,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateServiceRequest) (domain.ServiceDefinition, error) {
	if err := validateDefinition(req.Name, req.FlatFee, req.FlatFeeThreshold, req.OverageRate15Min, req.Surcharge, req.TaxCode, req.Unit); err != nil {
		return domain.ServiceDefinition{}, err
	}

	now := s.clock.Now()
	def := domain.ServiceDefinition{
		ID:                s.genID.Generate(),
		Code:              slug.Make(req.Name),
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		ReferenceDuration: req.ReferenceDuration,
		FlatFee:           req.FlatFee,
		FlatFeeThreshold:  req.FlatFeeThreshold,
		OverageRate15Min:  req.OverageRate15Min,
		OnSite:            req.OnSite,
		TaxCode:           req.TaxCode,
		Unit:              req.Unit,
		Metadata:          datatypes.JSONMap{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.Surcharge != nil {
		def.HasSurcharge = true
		def.Surcharge = *req.Surcharge
	}

	if err := s.store.Create(ctx, &def); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ServiceDefinition{}, domain.ErrDuplicateCode
		}
		return domain.ServiceDefinition{}, err
	}

	s.log.Info("servicecatalog.created",
		zap.String("id", def.ID.String()),
		zap.String("code", def.Code),
	)

	return def, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateServiceRequest) (domain.ServiceDefinition, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.ServiceDefinition{}, err
	}

	if err := validateDefinition(req.Name, req.FlatFee, req.FlatFeeThreshold, req.OverageRate15Min, req.Surcharge, req.TaxCode, req.Unit); err != nil {
		return domain.ServiceDefinition{}, err
	}

	existing, err := s.store.FindOne(ctx, &domain.ServiceDefinition{ID: id})
	if err != nil {
		return domain.ServiceDefinition{}, err
	}
	if existing == nil {
		return domain.ServiceDefinition{}, domain.ErrNotFound
	}

	existing.Name = strings.TrimSpace(req.Name)
	existing.Description = req.Description
	existing.ReferenceDuration = req.ReferenceDuration
	existing.FlatFee = req.FlatFee
	existing.FlatFeeThreshold = req.FlatFeeThreshold
	existing.OverageRate15Min = req.OverageRate15Min
	existing.OnSite = req.OnSite
	existing.TaxCode = req.TaxCode
	existing.Unit = req.Unit
	existing.UpdatedAt = s.clock.Now()

	if req.Surcharge != nil {
		existing.HasSurcharge = true
		existing.Surcharge = *req.Surcharge
	} else {
		existing.HasSurcharge = false
		existing.Surcharge = domain.SurchargeRule{}
	}

	if err := s.store.BatchUpdate(ctx, []*domain.ServiceDefinition{existing}); err != nil {
		return domain.ServiceDefinition{}, err
	}

	return *existing, nil
}

func (s *Service) List(ctx context.Context, req domain.ListServiceRequest) (domain.ListServiceResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	query := domain.ServiceDefinition{
		Code:    strings.TrimSpace(req.Code),
		TaxCode: domain.TaxCode(strings.TrimSpace(req.TaxCode)),
	}
	if req.OnSite != nil {
		query.OnSite = *req.OnSite
	}

	opts := []option.QueryOption{
		option.ApplyPagination(pagination.Pagination{
			PageToken: req.PageToken,
			PageSize:  int(pageSize),
		}),
		option.WithOrder("id desc"),
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		opts = append(opts, option.WithSearch("name", strings.ToLower(name)))
	}

	items, err := s.store.Find(ctx, &query, opts...)
	if err != nil {
		return domain.ListServiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(def *domain.ServiceDefinition) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: def.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	services := make([]domain.ServiceDefinition, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		services = append(services, *item)
	}

	resp := domain.ListServiceResponse{Services: services}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetServiceRequest) (domain.ServiceDefinition, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.ServiceDefinition{}, err
	}

	item, err := s.store.FindOne(ctx, &domain.ServiceDefinition{ID: id})
	if err != nil {
		return domain.ServiceDefinition{}, err
	}
	if item == nil {
		return domain.ServiceDefinition{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) GetByIDs(ctx context.Context, ids []string) ([]domain.ServiceDefinition, error) {
	result := make([]domain.ServiceDefinition, 0, len(ids))
	for _, raw := range ids {
		def, err := s.GetByID(ctx, domain.GetServiceRequest{ID: raw})
		if err != nil {
			return nil, err
		}
		result = append(result, def)
	}
	return result, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}

	item, err := s.store.FindOne(ctx, &domain.ServiceDefinition{ID: id})
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	return s.store.Delete(ctx, id.String())
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func validateDefinition(
	name string,
	flatFee decimal.Decimal,
	threshold time.Duration,
	overageRate decimal.Decimal,
	surcharge *domain.SurchargeRule,
	taxCode domain.TaxCode,
	unit domain.DisplayUnit,
) error {
	if strings.TrimSpace(name) == "" {
		return domain.ErrInvalidName
	}
	if flatFee.IsNegative() {
		return domain.ErrInvalidFlatFee
	}
	if threshold <= 0 {
		return domain.ErrInvalidThreshold
	}
	if overageRate.IsNegative() {
		return domain.ErrInvalidOverageRate
	}
	if surcharge != nil {
		if !domain.ValidSurchargeKind(surcharge.Kind) ||
			!surcharge.UnitSize.IsPositive() ||
			surcharge.PricePerUnit.IsNegative() {
			return domain.ErrInvalidSurcharge
		}
	}
	if !domain.ValidTaxCode(taxCode) {
		return domain.ErrInvalidTaxCode
	}
	if !domain.ValidDisplayUnit(unit) {
		return domain.ErrInvalidUnit
	}
	return nil
}
