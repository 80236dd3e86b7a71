package printing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adfinitum/backend/internal/domain/order"
)

// InvoiceRenderer turns an order into a PDF invoice.
type InvoiceRenderer struct {
	engine   *TemplateEngine
	renderer PDFRenderer
	company  string
	now      func() time.Time
}

// NewInvoiceRenderer creates an InvoiceRenderer
func NewInvoiceRenderer(engine *TemplateEngine, renderer PDFRenderer, company string) *InvoiceRenderer {
	if company == "" {
		company = "Adfinitum"
	}
	return &InvoiceRenderer{engine: engine, renderer: renderer, company: company, now: time.Now}
}

type invoiceLine struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
	Subtotal decimal.Decimal
}

type invoiceView struct {
	Company         string
	Number          string
	IssuedAt        time.Time
	OrderedAt       time.Time
	Status          string
	PaymentMethod   string
	PaymentStatus   string
	FullName        string
	Email           string
	PhoneNumber     string
	ShippingAddress string
	Items           []invoiceLine
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	CouponCode      string
	ShippingCost    decimal.Decimal
	Total           decimal.Decimal
}

// InvoiceHTML renders the invoice document without printing it.
func (r *InvoiceRenderer) InvoiceHTML(o *order.Order) (string, error) {
	view := invoiceView{
		Company:         r.company,
		Number:          shortUUID(o.ID),
		IssuedAt:        r.now(),
		OrderedAt:       o.CreatedAt,
		Status:          string(o.Status),
		PaymentMethod:   string(o.PaymentMethod),
		PaymentStatus:   string(o.PaymentStatus),
		FullName:        o.FullName,
		Email:           o.Email,
		PhoneNumber:     o.PhoneNumber,
		ShippingAddress: o.ShippingAddress,
		Subtotal:        o.Subtotal,
		Discount:        o.Discount,
		CouponCode:      o.CouponCode,
		ShippingCost:    o.ShippingCost,
		Total:           o.Total,
	}
	for _, item := range o.Items {
		view.Items = append(view.Items, invoiceLine{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Price:    item.Price,
			Subtotal: item.Subtotal,
		})
	}
	return r.engine.RenderString("invoice", invoiceTemplate, view)
}

// RenderInvoice renders the invoice for o as PDF bytes.
func (r *InvoiceRenderer) RenderInvoice(ctx context.Context, o *order.Order) ([]byte, error) {
	doc, err := r.InvoiceHTML(o)
	if err != nil {
		return nil, err
	}
	result, err := r.renderer.Render(ctx, &RenderRequest{
		HTML:       doc,
		PaperSize:  PaperSizeA4,
		Margins:    DefaultMargins(),
		Title:      "Invoice " + shortUUID(o.ID),
		FooterHTML: `<div style="font-size:8px;width:100%;text-align:center;">Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`,
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}

// Close releases the underlying renderer
func (r *InvoiceRenderer) Close() error {
	return r.renderer.Close()
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.Number}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #222; }
  h1 { font-size: 22px; margin: 0; }
  .muted { color: #666; }
  .header { display: flex; justify-content: space-between; margin-bottom: 24px; }
  table { width: 100%; border-collapse: collapse; margin-top: 16px; }
  th, td { padding: 6px 8px; border-bottom: 1px solid #ddd; text-align: left; }
  td.num, th.num { text-align: right; }
  .totals td { border: none; }
  .grand td { font-weight: bold; font-size: 14px; border-top: 2px solid #222; }
</style>
</head>
<body>
<div class="header">
  <div>
    <h1>{{.Company}}</h1>
    <div class="muted">Tax invoice</div>
  </div>
  <div>
    <div><strong>Invoice #{{.Number}}</strong></div>
    <div class="muted">Issued {{formatDate .IssuedAt}}</div>
    <div class="muted">Ordered {{formatDateTime .OrderedAt}}</div>
  </div>
</div>

<div>
  <strong>Bill to</strong><br>
  {{.FullName}}<br>
  {{.Email}}{{if .PhoneNumber}}<br>{{.PhoneNumber}}{{end}}
  {{if .ShippingAddress}}<br><span class="muted">Ship to: {{.ShippingAddress}}</span>{{end}}
</div>

<p>
  Status: {{humanize .Status}} &middot;
  Payment: {{upper .PaymentMethod}} ({{humanize .PaymentStatus}})
</p>

<table>
  <thead>
    <tr><th>Item</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Subtotal</th></tr>
  </thead>
  <tbody>
  {{range .Items}}
    <tr>
      <td>{{.Name}}</td>
      <td class="num">{{.Quantity}}</td>
      <td class="num">{{formatMoney .Price}}</td>
      <td class="num">{{formatMoney .Subtotal}}</td>
    </tr>
  {{end}}
  </tbody>
</table>

<table class="totals">
  <tr><td></td><td class="num">Subtotal</td><td class="num">{{formatMoney .Subtotal}}</td></tr>
  {{if not .Discount.IsZero}}<tr><td></td><td class="num">Discount{{if .CouponCode}} ({{.CouponCode}}){{end}}</td><td class="num">-{{formatMoney .Discount}}</td></tr>{{end}}
  <tr><td></td><td class="num">Shipping</td><td class="num">{{formatMoney .ShippingCost}}</td></tr>
  <tr class="grand"><td></td><td class="num">Total</td><td class="num">{{formatMoney .Total}}</td></tr>
</table>
</body>
</html>
`
