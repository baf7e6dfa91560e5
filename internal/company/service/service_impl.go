package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/company/domain"
	"github.com/smallbiznis/faktura/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Store repository.Repository[domain.Company]
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	store repository.Repository[domain.Company]
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("company.service"),
		genID: p.GenID,
		clock: p.Clock,
		store: p.Store,
	}
}

func (s *Service) Get(ctx context.Context) (domain.Company, error) {
	company, err := s.store.FindOne(ctx, &domain.Company{})
	if err != nil {
		return domain.Company{}, err
	}
	if company == nil {
		return domain.Company{}, domain.ErrNotFound
	}
	return *company, nil
}

// Update replaces the biller record, creating it on first use.
func (s *Service) Update(ctx context.Context, req domain.UpdateCompanyRequest) (domain.Company, error) {
	if err := validate(req); err != nil {
		return domain.Company{}, err
	}

	now := s.clock.Now()
	existing, err := s.store.FindOne(ctx, &domain.Company{})
	if err != nil {
		return domain.Company{}, err
	}

	if existing == nil {
		company := domain.Company{
			ID:                 s.genID.Generate(),
			Name:               strings.TrimSpace(req.Name),
			ManagingDirectors:  req.ManagingDirectors,
			Address:            req.Address,
			Email:              strings.TrimSpace(req.Email),
			Phone:              req.Phone,
			VATID:              req.VATID,
			CommercialRegister: req.CommercialRegister,
			Bank:               normalizeBank(req.Bank),
			LogoPath:           req.LogoPath,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := s.store.Create(ctx, &company); err != nil {
			return domain.Company{}, err
		}
		s.log.Info("company.created", zap.String("id", company.ID.String()))
		return company, nil
	}

	existing.Name = strings.TrimSpace(req.Name)
	existing.ManagingDirectors = req.ManagingDirectors
	existing.Address = req.Address
	existing.Email = strings.TrimSpace(req.Email)
	existing.Phone = req.Phone
	existing.VATID = req.VATID
	existing.CommercialRegister = req.CommercialRegister
	existing.Bank = normalizeBank(req.Bank)
	existing.LogoPath = req.LogoPath
	existing.UpdatedAt = now

	if err := s.store.BatchUpdate(ctx, []*domain.Company{existing}); err != nil {
		return domain.Company{}, err
	}

	return *existing, nil
}

func validate(req domain.UpdateCompanyRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return domain.ErrInvalidName
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.ErrInvalidEmail
	}
	if iban := normalizeIBAN(req.Bank.IBAN); iban != "" && len(iban) < 15 {
		return domain.ErrInvalidIBAN
	}
	return nil
}

func normalizeBank(bank domain.BankDetails) domain.BankDetails {
	bank.IBAN = normalizeIBAN(bank.IBAN)
	bank.BIC = strings.ToUpper(strings.TrimSpace(bank.BIC))
	return bank
}

func normalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(iban), " ", ""))
}
