package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/appointment/domain"
	"github.com/smallbiznis/faktura/internal/clock"
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
	Store repository.Repository[domain.Appointment]
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	store repository.Repository[domain.Appointment]
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("appointment.service"),
		genID: p.GenID,
		clock: p.Clock,
		store: p.Store,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateAppointmentRequest) (domain.Appointment, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.Appointment{}, domain.ErrInvalidCustomer
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Appointment{}, domain.ErrInvalidTitle
	}

	if req.StartAt.IsZero() || !req.EndAt.After(req.StartAt) {
		return domain.Appointment{}, domain.ErrInvalidWindow
	}

	var operatorID snowflake.ID
	if raw := strings.TrimSpace(req.OperatorID); raw != "" {
		operatorID, err = snowflake.ParseString(raw)
		if err != nil {
			return domain.Appointment{}, domain.ErrInvalidID
		}
	}

	now := s.clock.Now()
	appointment := domain.Appointment{
		ID:                s.genID.Generate(),
		CustomerID:        customerID,
		OperatorID:        operatorID,
		Title:             title,
		Notes:             req.Notes,
		StartAt:           req.StartAt.UTC(),
		EndAt:             req.EndAt.UTC(),
		EstimatedDuration: req.EstimatedDuration,
		ServiceIDs:        datatypes.NewJSONSlice(req.ServiceIDs),
		Status:            domain.StatusPlanned,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store.Create(ctx, &appointment); err != nil {
		return domain.Appointment{}, err
	}

	return appointment, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateAppointmentRequest) (domain.Appointment, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Appointment{}, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Appointment{}, domain.ErrInvalidTitle
	}

	if req.StartAt.IsZero() || !req.EndAt.After(req.StartAt) {
		return domain.Appointment{}, domain.ErrInvalidWindow
	}

	if !domain.ValidStatus(req.Status) {
		return domain.Appointment{}, domain.ErrInvalidStatus
	}

	existing, err := s.store.FindOne(ctx, &domain.Appointment{ID: id})
	if err != nil {
		return domain.Appointment{}, err
	}
	if existing == nil {
		return domain.Appointment{}, domain.ErrNotFound
	}

	existing.Title = title
	existing.Notes = req.Notes
	existing.StartAt = req.StartAt.UTC()
	existing.EndAt = req.EndAt.UTC()
	existing.EstimatedDuration = req.EstimatedDuration
	existing.ServiceIDs = datatypes.NewJSONSlice(req.ServiceIDs)
	existing.Status = req.Status
	existing.UpdatedAt = s.clock.Now()

	if err := s.store.BatchUpdate(ctx, []*domain.Appointment{existing}); err != nil {
		return domain.Appointment{}, err
	}

	return *existing, nil
}

// Confirm stamps the confirmation time and moves a planned appointment to
// CONFIRMED. Confirming twice is a no-op.
func (s *Service) Confirm(ctx context.Context, req domain.GetAppointmentRequest) (domain.Appointment, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Appointment{}, err
	}

	existing, err := s.store.FindOne(ctx, &domain.Appointment{ID: id})
	if err != nil {
		return domain.Appointment{}, err
	}
	if existing == nil {
		return domain.Appointment{}, domain.ErrNotFound
	}

	if existing.Status == domain.StatusConfirmed {
		return *existing, nil
	}
	if existing.Status != domain.StatusPlanned {
		return domain.Appointment{}, domain.ErrInvalidStatus
	}

	now := s.clock.Now()
	existing.Status = domain.StatusConfirmed
	existing.ConfirmedAt = &now
	existing.UpdatedAt = now

	if err := s.store.BatchUpdate(ctx, []*domain.Appointment{existing}); err != nil {
		return domain.Appointment{}, err
	}

	return *existing, nil
}

func (s *Service) List(ctx context.Context, req domain.ListAppointmentRequest) (domain.ListAppointmentResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	query := domain.Appointment{
		Status: domain.Status(strings.TrimSpace(req.Status)),
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		customerID, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.ListAppointmentResponse{}, domain.ErrInvalidCustomer
		}
		query.CustomerID = customerID
	}

	items, err := s.store.Find(ctx, &query,
		option.ApplyPagination(pagination.Pagination{
			PageToken: req.PageToken,
			PageSize:  int(pageSize),
		}),
		option.WithWindow("start_at", req.From, req.To),
		option.WithOrder("start_at desc, id desc"),
	)
	if err != nil {
		return domain.ListAppointmentResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(appointment *domain.Appointment) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: appointment.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	appointments := make([]domain.Appointment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		appointments = append(appointments, *item)
	}

	resp := domain.ListAppointmentResponse{Appointments: appointments}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetAppointmentRequest) (domain.Appointment, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Appointment{}, err
	}

	item, err := s.store.FindOne(ctx, &domain.Appointment{ID: id})
	if err != nil {
		return domain.Appointment{}, err
	}
	if item == nil {
		return domain.Appointment{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Delete(ctx context.Context, req domain.GetAppointmentRequest) error {
	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}

	item, err := s.store.FindOne(ctx, &domain.Appointment{ID: id})
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
