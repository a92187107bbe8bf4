package procurement

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/language"
)

//go:embed templates/comparison.html
var templates embed.FS

// PDFClient exposes the subset of the report client used for exports.
type PDFClient interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Exporter renders quotation comparisons as PDF.
type Exporter struct {
	tpl    *template.Template
	client PDFClient
	now    func() time.Time
}

// NewExporter parses the comparison template and wires the PDF client.
func NewExporter(client PDFClient) (*Exporter, error) {
	if client == nil {
		return nil, errors.New("procurement exporter: pdf client required")
	}
	tpl, err := template.ParseFS(templates, "templates/comparison.html")
	if err != nil {
		return nil, err
	}
	return &Exporter{tpl: tpl, client: client, now: time.Now}, nil
}

// ComparisonHTML renders the comparison grid as a standalone HTML page.
func (e *Exporter) ComparisonHTML(cmp Comparison) (string, error) {
	buf := &bytes.Buffer{}
	data := struct {
		Comparison
		Printed string
	}{Comparison: cmp, Printed: e.now().Format("02 Jan 2006 15:04")}
	if err := e.tpl.Execute(buf, data); err != nil {
		return "", fmt.Errorf("render comparison: %w", err)
	}
	return buf.String(), nil
}

// ComparisonPDF builds and renders the comparison for an RFQ.
func (e *Exporter) ComparisonPDF(ctx context.Context, svc *Service, rfqID string, tag language.Tag) ([]byte, string, error) {
	cmp, err := svc.Compare(ctx, rfqID, tag)
	if err != nil {
		return nil, "", err
	}
	html, err := e.ComparisonHTML(cmp)
	if err != nil {
		return nil, "", err
	}
	pdf, err := e.client.RenderHTML(ctx, html)
	if err != nil {
		return nil, "", err
	}
	return pdf, fmt.Sprintf("comparison-%s.pdf", fileSafe(cmp.RFQNumber, cmp.RFQID)), nil
}

func fileSafe(values ...string) string {
	for _, v := range values {
		if v == "" {
			continue
		}
		out := make([]rune, 0, len(v))
		for _, r := range v {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
				out = append(out, r)
			default:
				out = append(out, '-')
			}
		}
		return string(out)
	}
	return "rfq"
}
