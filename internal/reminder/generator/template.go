package generator

import (
	"context"
	"fmt"

	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/reminder/domain"
)

const reminderTemplate = "Hello %s, your invoice #%s of ₹%s is due on %s. Kindly clear the payment. - %s"

// Generator drafts reminder text. It never fails: every problem on the
// augmented path resolves to the template.
type Generator interface {
	Generate(ctx context.Context, req domain.Request) domain.Reminder
}

// Formatter renders the fixed reminder template.
type Formatter struct {
	dateLayout string
}

func NewFormatter(layout string) Formatter {
	if layout == "" {
		layout = config.DefaultReminderDateLayout
	}
	return Formatter{dateLayout: layout}
}

func (f Formatter) Amount(req domain.Request) string {
	return req.Amount.StringFixed(2)
}

func (f Formatter) DueDate(req domain.Request) string {
	return req.DueDate.Format(f.dateLayout)
}

func (f Formatter) Format(req domain.Request) string {
	return fmt.Sprintf(reminderTemplate,
		req.CustomerName,
		req.InvoiceNumber,
		f.Amount(req),
		f.DueDate(req),
		req.BusinessName,
	)
}

// TemplateGenerator is the direct path.
type TemplateGenerator struct {
	formatter Formatter
}

func NewTemplateGenerator(f Formatter) *TemplateGenerator {
	return &TemplateGenerator{formatter: f}
}

func (g *TemplateGenerator) Generate(_ context.Context, req domain.Request) domain.Reminder {
	return domain.Reminder{Message: g.formatter.Format(req), Source: domain.SourceTemplate}
}
