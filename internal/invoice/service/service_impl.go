package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/internal/clock"
	companydomain "github.com/smallbiznis/faktura/internal/company/domain"
	"github.com/smallbiznis/faktura/internal/config"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	"github.com/smallbiznis/faktura/internal/invoice/domain"
	invoicingdomain "github.com/smallbiznis/faktura/internal/invoicing/domain"
	"github.com/smallbiznis/faktura/internal/providers/email"
	"github.com/smallbiznis/faktura/internal/providers/pdf"
	catalogdomain "github.com/smallbiznis/faktura/internal/servicecatalog/domain"
	"github.com/smallbiznis/faktura/pkg/db"
	"github.com/smallbiznis/faktura/pkg/db/option"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
	"github.com/smallbiznis/faktura/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// numberAttempts bounds the disambiguator retry loop on stored-number
// collisions.
const numberAttempts = 5

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Cfg       config.Config
	Holder    *config.InvoicingConfigHolder
	Engine    invoicingdomain.Service
	Catalog   catalogdomain.Service
	Customers customerdomain.Service
	Companies companydomain.Service
	PDF       pdf.Provider
	Email     email.Provider
	Store     repository.Repository[domain.Invoice]
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	cfg       config.Config
	holder    *config.InvoicingConfigHolder
	engine    invoicingdomain.Service
	catalog   catalogdomain.Service
	customers customerdomain.Service
	companies companydomain.Service
	pdf       pdf.Provider
	email     email.Provider
	store     repository.Repository[domain.Invoice]
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		cfg:       p.Cfg,
		holder:    p.Holder,
		engine:    p.Engine,
		catalog:   p.Catalog,
		customers: p.Customers,
		companies: p.Companies,
		pdf:       p.PDF,
		email:     p.Email,
		store:     p.Store,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.InvoiceWithTotals, error) {
	if len(req.Rendered) == 0 {
		return domain.InvoiceWithTotals{}, domain.ErrNoRenderedServices
	}

	customer, err := s.customers.GetByID(ctx, customerdomain.GetCustomerRequest{ID: req.CustomerID})
	if err != nil {
		if err == customerdomain.ErrNotFound || err == customerdomain.ErrInvalidID {
			return domain.InvoiceWithTotals{}, domain.ErrInvalidCustomer
		}
		return domain.InvoiceWithTotals{}, err
	}

	rendered, err := s.resolveRendered(ctx, req.Rendered, customer.DiscountPercent)
	if err != nil {
		return domain.InvoiceWithTotals{}, err
	}

	items, err := s.engine.BuildLineItems(rendered, req.SurchargeQty)
	if err != nil {
		return domain.InvoiceWithTotals{}, err
	}

	discountPct := decimal.Zero
	if req.DiscountPercent != nil {
		discountPct = *req.DiscountPercent
	}
	earlyPaymentPct := decimal.Zero
	if req.EarlyPaymentPercent != nil {
		earlyPaymentPct = *req.EarlyPaymentPercent
	}

	totals, err := s.engine.Aggregate(items, discountPct, earlyPaymentPct)
	if err != nil {
		return domain.InvoiceWithTotals{}, err
	}

	settings := s.holder.Current()
	issuedAt := s.clock.Now()

	invoice := domain.Invoice{
		ID:                  s.genID.Generate(),
		CustomerID:          customer.ID,
		CustomerName:        customerDisplayName(customer),
		CustomerEmail:       customer.Email,
		CustomerAddress:     formatCustomerAddress(customer.Address),
		OperatorCode:        strings.ToUpper(strings.TrimSpace(req.OperatorInitials)),
		Status:              invoicingdomain.StatusOpen,
		IssuedAt:            issuedAt,
		DueDate:             issuedAt.AddDate(0, 0, settings.DueDays),
		Currency:            settings.Currency,
		PaymentTerms:        settings.PaymentTermsText,
		DiscountPercent:     discountPct,
		EarlyPaymentPercent: earlyPaymentPct,
		SurchargeQty:        req.SurchargeQty,
		CreatedAt:           issuedAt,
		UpdatedAt:           issuedAt,
	}
	if invoice.OperatorCode == "" {
		invoice.OperatorCode = settings.DefaultOperatorCode
	}

	invoice.Lines = make([]domain.InvoiceLine, 0, len(items))
	for _, item := range items {
		invoice.Lines = append(invoice.Lines, domain.InvoiceLine{
			ID:              s.genID.Generate(),
			InvoiceID:       invoice.ID,
			Position:        item.Position,
			ServiceID:       item.ServiceID,
			Name:            item.Name,
			Description:     item.Description,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TaxCode:         item.TaxCode,
			TaxRate:         item.TaxRate,
			DiscountPercent: item.DiscountPercent,
			Unit:            item.Unit,
		})
	}

	if err := s.persistWithNumber(ctx, &invoice); err != nil {
		return domain.InvoiceWithTotals{}, err
	}

	s.log.Info("invoice.created",
		zap.String("id", invoice.ID.String()),
		zap.String("number", invoice.Number),
		zap.String("payable", totals.PayableAmount.StringFixed(2)),
	)

	s.renderDocument(ctx, &invoice, totals)

	if req.SendEmail && invoice.CustomerEmail != "" {
		s.dispatch(ctx, &invoice, totals)
	}

	return domain.InvoiceWithTotals{Invoice: invoice, Totals: totals}, nil
}

// persistWithNumber stamps a fresh invoice number and retries on a stored
// collision; the disambiguator makes each attempt distinct.
func (s *Service) persistWithNumber(ctx context.Context, invoice *domain.Invoice) error {
	var lastErr error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		invoice.Number = s.engine.Number(invoice.IssuedAt, invoice.OperatorCode)

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(invoice).Error
		})
		if err == nil {
			return nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return err
		}
		lastErr = err
		s.log.Warn("invoice.number_collision",
			zap.String("number", invoice.Number),
			zap.Int("attempt", attempt+1),
		)
	}
	s.log.Error("invoice.number_exhausted", zap.Error(lastErr))
	return domain.ErrNumberExhausted
}

func (s *Service) resolveRendered(ctx context.Context, inputs []domain.RenderedServiceInput, customerDiscount decimal.Decimal) ([]invoicingdomain.RenderedService, error) {
	rendered := make([]invoicingdomain.RenderedService, 0, len(inputs))
	for _, input := range inputs {
		def, err := s.catalog.GetByID(ctx, catalogdomain.GetServiceRequest{ID: input.ServiceID})
		if err != nil {
			if err == catalogdomain.ErrNotFound || err == catalogdomain.ErrInvalidID {
				return nil, domain.ErrInvalidService
			}
			return nil, err
		}

		discount := customerDiscount
		if input.DiscountPercent != nil {
			discount = *input.DiscountPercent
		}

		rendered = append(rendered, invoicingdomain.RenderedService{
			Definition:      def,
			Duration:        input.Duration,
			Quantity:        input.Quantity,
			DiscountPercent: discount,
		})
	}
	return rendered, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetInvoiceRequest) (domain.InvoiceWithTotals, error) {
	invoice, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.InvoiceWithTotals{}, err
	}

	totals, err := s.engine.Aggregate(invoice.Items(), invoice.DiscountPercent, invoice.EarlyPaymentPercent)
	if err != nil {
		return domain.InvoiceWithTotals{}, err
	}

	return domain.InvoiceWithTotals{Invoice: *invoice, Totals: totals}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	query := domain.Invoice{}
	if status := strings.TrimSpace(req.Status); status != "" {
		tag := invoicingdomain.PaymentStatus(status)
		if !invoicingdomain.ValidPaymentStatus(tag) {
			return domain.ListInvoiceResponse{}, domain.ErrInvalidStatus
		}
		query.Status = tag
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		customerID, err := snowflake.ParseString(raw)
		if err != nil || customerID == 0 {
			return domain.ListInvoiceResponse{}, domain.ErrInvalidCustomer
		}
		query.CustomerID = customerID
	}

	items, err := s.store.Find(ctx, &query,
		option.ApplyPagination(pagination.Pagination{
			PageToken: req.PageToken,
			PageSize:  int(pageSize),
		}),
		option.WithPreload("Lines"),
		option.WithOrder("id desc"),
	)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: invoice.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	invoices := make([]domain.InvoiceWithTotals, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		totals, err := s.engine.Aggregate(item.Items(), item.DiscountPercent, item.EarlyPaymentPercent)
		if err != nil {
			return domain.ListInvoiceResponse{}, err
		}
		invoices = append(invoices, domain.InvoiceWithTotals{Invoice: *item, Totals: totals})
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) MarkPaid(ctx context.Context, req domain.GetInvoiceRequest) (domain.Invoice, error) {
	invoice, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}

	next, err := invoicingdomain.MarkPaid(invoice.Status)
	if err != nil {
		return domain.Invoice{}, err
	}

	invoice.Status = next
	invoice.UpdatedAt = s.clock.Now()

	if err := s.store.Update(ctx, invoice.ID.String(), map[string]any{
		"status":     invoice.Status,
		"updated_at": invoice.UpdatedAt,
	}); err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("invoice.paid", zap.String("number", invoice.Number))

	return *invoice, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.Invoice, error) {
	if !invoicingdomain.ValidPaymentStatus(req.Status) {
		return domain.Invoice{}, domain.ErrInvalidStatus
	}

	invoice, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}

	invoice.Status = req.Status
	invoice.UpdatedAt = s.clock.Now()

	if err := s.store.Update(ctx, invoice.ID.String(), map[string]any{
		"status":     invoice.Status,
		"updated_at": invoice.UpdatedAt,
	}); err != nil {
		return domain.Invoice{}, err
	}

	return *invoice, nil
}

func (s *Service) find(ctx context.Context, rawID string) (*domain.Invoice, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}

	invoice, err := s.store.FindOne(ctx, &domain.Invoice{ID: id}, option.WithPreload("Lines"))
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}

	return invoice, nil
}

// renderDocument writes the PDF next to the invoice record. Failures are
// logged, not returned: the invoice is already issued.
func (s *Service) renderDocument(ctx context.Context, invoice *domain.Invoice, totals invoicingdomain.Totals) {
	company, err := s.companies.Get(ctx)
	if err != nil {
		s.log.Warn("invoice.document_skipped", zap.Error(err))
		return
	}

	reader, err := s.pdf.GenerateInvoice(ctx, buildDocument(*invoice, totals, company))
	if err != nil || reader == nil {
		if err != nil {
			s.log.Warn("invoice.document_render_failed", zap.Error(err))
		}
		return
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		s.log.Warn("invoice.document_read_failed", zap.Error(err))
		return
	}

	dir := s.cfg.Document.OutputDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.log.Warn("invoice.document_dir_failed", zap.Error(err))
		return
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.pdf", invoice.Number, uuid.NewString()))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		s.log.Warn("invoice.document_write_failed", zap.Error(err))
		return
	}

	invoice.DocumentPath = path
	if err := s.store.Update(ctx, invoice.ID.String(), map[string]any{
		"document_path": path,
	}); err != nil {
		s.log.Warn("invoice.document_record_failed", zap.Error(err))
	}
}

func (s *Service) dispatch(ctx context.Context, invoice *domain.Invoice, totals invoicingdomain.Totals) {
	subject := "Rechnung " + invoice.Number
	body := fmt.Sprintf(
		"<p>Sehr geehrte Damen und Herren,</p><p>anbei erhalten Sie die Rechnung %s über %s %s, fällig am %s.</p><p>%s</p>",
		invoice.Number,
		totals.PayableAmount.StringFixed(2),
		invoice.Currency,
		invoice.DueDate.Format("02.01.2006"),
		invoice.PaymentTerms,
	)

	if err := s.email.Send(ctx, []string{invoice.CustomerEmail}, subject, body); err != nil {
		s.log.Warn("invoice.dispatch_failed", zap.Error(err))
		return
	}

	now := s.clock.Now()
	invoice.EmailedAt = &now
	if err := s.store.Update(ctx, invoice.ID.String(), map[string]any{
		"emailed_at": now,
	}); err != nil {
		s.log.Warn("invoice.dispatch_record_failed", zap.Error(err))
	}
}

func buildDocument(invoice domain.Invoice, totals invoicingdomain.Totals, company companydomain.Company) pdf.InvoiceData {
	data := pdf.InvoiceData{
		CompanyName:     company.Name,
		CompanyAddress:  formatCompanyAddress(company.Address),
		CompanyEmail:    company.Email,
		CompanyVATID:    company.VATID,
		CompanyRegister: company.CommercialRegister,
		LogoPath:        company.LogoPath,

		InvoiceNumber: invoice.Number,
		IssueDate:     invoice.IssuedAt.Format("02.01.2006"),
		DueDate:       invoice.DueDate.Format("02.01.2006"),

		CustomerName:    invoice.CustomerName,
		CustomerAddress: invoice.CustomerAddress,
		CustomerEmail:   invoice.CustomerEmail,

		NetSum:        totals.NetSum.StringFixed(2),
		TaxSum:        totals.TaxSum.StringFixed(2),
		GrossSum:      totals.GrossSum.StringFixed(2),
		PayableAmount: totals.PayableAmount.StringFixed(2),
		Currency:      invoice.Currency,

		PaymentTerms: invoice.PaymentTerms,
		BankName:     company.Bank.BankName,
		IBAN:         company.Bank.IBAN,
		BIC:          company.Bank.BIC,
	}

	if invoice.DiscountPercent.IsPositive() {
		data.DiscountPercent = invoice.DiscountPercent.StringFixed(2)
		data.DiscountAmount = totals.DiscountAmount.StringFixed(2)
		data.GrossAfterDiscount = totals.GrossAfterDiscount.StringFixed(2)
	}
	if invoice.EarlyPaymentPercent.IsPositive() {
		data.EarlyPaymentPercent = invoice.EarlyPaymentPercent.StringFixed(2)
		data.EarlyPaymentDiscount = totals.EarlyPaymentDiscountAmount.StringFixed(2)
	}

	for _, ln := range invoice.Lines {
		data.Items = append(data.Items, pdf.InvoiceItem{
			Position:    ln.Position,
			Description: ln.Name,
			Quantity:    ln.Quantity.String(),
			Unit:        string(ln.Unit),
			UnitPrice:   ln.UnitPrice.StringFixed(2),
			TaxRate:     ln.TaxRate.StringFixed(0) + " %",
			Net: invoicingdomain.LineItem{
				Quantity:        ln.Quantity,
				UnitPrice:       ln.UnitPrice,
				DiscountPercent: ln.DiscountPercent,
			}.Net().StringFixed(2),
		})
	}

	return data
}

func customerDisplayName(customer customerdomain.Customer) string {
	if customer.Business() {
		return customer.CompanyName
	}
	return customer.Name
}

func formatCustomerAddress(addr customerdomain.Address) string {
	return formatAddress(addr.Street, addr.HouseNumber, addr.PostalCode, addr.City)
}

func formatCompanyAddress(addr companydomain.Address) string {
	return formatAddress(addr.Street, addr.HouseNumber, addr.PostalCode, addr.City)
}

func formatAddress(street, houseNumber, postalCode, city string) string {
	left := strings.TrimSpace(street + " " + houseNumber)
	right := strings.TrimSpace(postalCode + " " + city)
	switch {
	case left == "":
		return right
	case right == "":
		return left
	default:
		return left + ", " + right
	}
}
