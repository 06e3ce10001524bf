package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/observability/tracing"
)

const (
	defaultDateLayout = "02/01/2006"
	currencyPrefix    = "INR "
)

type MarotoProvider struct{}

func New() Provider {
	return &MarotoProvider{}
}

func (p *MarotoProvider) RenderInvoice(ctx context.Context, doc Document) (out []byte, err error) {
	ctx, span := tracing.Start(ctx, "pdf.render_invoice")
	defer func() { tracing.End(span, err) }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	layout := doc.DateLayout
	if layout == "" {
		layout = defaultDateLayout
	}
	inv := doc.Invoice
	customer := doc.Customer

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, doc.BusinessName, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, "INVOICE", props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Invoice number: "+inv.InvoiceNumber, props.Text{Top: 0}),
			text.New("Date of issue: "+inv.IssueDate.Format(layout), props.Text{Top: 4}),
			text.New("Date due: "+inv.DueDate.Format(layout), props.Text{Top: 8}),
			text.New("Status: "+inv.Status.Label(), props.Text{Top: 12}),
		),
		col.New(6),
	)

	billTo := col.New(6).Add(
		text.New("Bill to", props.Text{Style: fontstyle.Bold}),
		text.New(customer.Name, props.Text{Top: 5}),
		text.New(customer.Address, props.Text{Top: 9}),
		text.New(customer.Email, props.Text{Top: 17}),
		text.New(customer.Phone, props.Text{Top: 21}),
	)
	if customer.GSTNo != nil && *customer.GSTNo != "" {
		billTo.Add(text.New("GST: "+*customer.GSTNo, props.Text{Top: 25}))
	}
	m.AddRow(32, billTo, col.New(6))

	m.AddRow(10,
		text.NewCol(5, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Rate", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Tax %", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range inv.Items {
		m.AddRow(8,
			text.NewCol(5, item.Description, props.Text{Size: 9}),
			text.NewCol(1, item.Qty.String(), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(item.Rate), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Tax.String(), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(invoicedomain.LineTotal(item)), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, money(inv.TotalAmount), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)
	if inv.PaymentReceivedDate != nil {
		m.AddRow(8,
			col.New(8),
			text.NewCol(4, "Paid on "+inv.PaymentReceivedDate.Format(layout), props.Text{Size: 9, Align: align.Right}),
		)
	}

	generated, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	return generated.GetBytes(), nil
}

func money(d decimal.Decimal) string {
	return currencyPrefix + d.StringFixed(2)
}
