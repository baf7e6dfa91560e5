package pdf

import (
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// InvoiceData carries preformatted strings; the document layer never does
// arithmetic or rounding on amounts.
type InvoiceData struct {
	CompanyName     string
	CompanyAddress  string
	CompanyEmail    string
	CompanyVATID    string
	CompanyRegister string
	LogoPath        string

	InvoiceNumber string
	IssueDate     string
	DueDate       string

	CustomerName    string
	CustomerAddress string
	CustomerEmail   string

	Items []InvoiceItem

	NetSum               string
	TaxSum               string
	GrossSum             string
	DiscountPercent      string
	DiscountAmount       string
	GrossAfterDiscount   string
	EarlyPaymentPercent  string
	EarlyPaymentDiscount string
	PayableAmount        string
	Currency             string

	PaymentTerms string
	BankName     string
	IBAN         string
	BIC          string
}

type InvoiceItem struct {
	Position    int
	Description string
	Quantity    string
	Unit        string
	UnitPrice   string
	TaxRate     string
	Net         string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Seite {current} von {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	if data.LogoPath != "" {
		m.AddRow(30,
			image.NewFromFileCol(3, data.LogoPath, props.Rect{
				Percent: 80,
			}),
			col.New(9),
		)
	}

	m.AddRow(10,
		text.NewCol(12, "Rechnung "+data.InvoiceNumber, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(16,
		col.New(6).Add(
			text.New(data.CompanyName, props.Text{Style: fontstyle.Bold}),
			text.New(data.CompanyAddress, props.Text{Top: 4}),
			text.New(data.CompanyEmail, props.Text{Top: 8}),
			text.New("USt-IdNr.: "+data.CompanyVATID, props.Text{Top: 12}),
		),
		col.New(6).Add(
			text.New("Rechnungsdatum: "+data.IssueDate, props.Text{Align: align.Right}),
			text.New("Fällig am: "+data.DueDate, props.Text{Top: 4, Align: align.Right}),
		),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Rechnungsempfänger", props.Text{Style: fontstyle.Bold}),
			text.New(data.CustomerName, props.Text{Top: 5}),
			text.New(data.CustomerAddress, props.Text{Top: 9}),
			text.New(data.CustomerEmail, props.Text{Top: 13}),
		),
		col.New(6),
	)

	m.AddRow(8,
		text.NewCol(1, "Pos.", props.Text{Style: fontstyle.Bold}),
		text.NewCol(5, "Leistung", props.Text{Style: fontstyle.Bold}),
		text.NewCol(2, "Menge", props.Text{Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Einzelpreis", props.Text{Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Netto", props.Text{Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range data.Items {
		m.AddRow(7,
			text.NewCol(1, strconv.Itoa(item.Position)),
			text.NewCol(5, item.Description),
			text.NewCol(2, item.Quantity+" "+item.Unit, props.Text{Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Align: align.Right}),
			text.NewCol(2, item.Net, props.Text{Align: align.Right}),
		)
	}

	m.AddRow(2, line.NewCol(12))

	addTotal := func(label, amount string, bold bool) {
		style := fontstyle.Normal
		if bold {
			style = fontstyle.Bold
		}
		m.AddRow(6,
			col.New(7),
			text.NewCol(3, label, props.Text{Align: align.Right, Style: style}),
			text.NewCol(2, amount+" "+data.Currency, props.Text{Align: align.Right, Style: style}),
		)
	}

	addTotal("Nettobetrag", data.NetSum, false)
	addTotal("Umsatzsteuer", data.TaxSum, false)
	addTotal("Bruttobetrag", data.GrossSum, false)
	if data.DiscountAmount != "" {
		addTotal("Rabatt ("+data.DiscountPercent+" %)", "-"+data.DiscountAmount, false)
		addTotal("Zwischensumme", data.GrossAfterDiscount, false)
	}
	if data.EarlyPaymentDiscount != "" {
		addTotal("Skonto ("+data.EarlyPaymentPercent+" %)", "-"+data.EarlyPaymentDiscount, false)
	}
	addTotal("Zahlbetrag", data.PayableAmount, true)

	m.AddRow(14,
		col.New(12).Add(
			text.New(data.PaymentTerms, props.Text{Top: 4, Size: 9}),
		),
	)

	m.AddRow(14,
		col.New(12).Add(
			text.New("Bankverbindung: "+data.BankName, props.Text{Size: 8}),
			text.New("IBAN: "+data.IBAN+"   BIC: "+data.BIC, props.Text{Top: 4, Size: 8}),
			text.New(data.CompanyRegister, props.Text{Top: 8, Size: 8}),
		),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
