// Package printing renders order invoices to PDF.
//
// Invoices are produced in two steps: TemplateEngine executes an html/template
// with the order data, and ChromedpRenderer prints the resulting HTML through
// headless Chrome.
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{ExecPath: "/usr/bin/chromium"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	invoices := NewInvoiceRenderer(NewTemplateEngine(), renderer, "Adfinitum")
//	pdf, err := invoices.RenderInvoice(ctx, order)
package printing
