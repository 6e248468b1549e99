package pdf

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"casasmart/internal/models"
)

// Generator: интерфейс, удобно мокать в тестах
type Generator interface {
	WriteQuote(w io.Writer, q *models.Quote, issued time.Time) error
	WriteInvoice(w io.Writer, inv *models.Invoice, p *models.Project) error
}

const (
	brandName    = "Casa Smart"
	brandTagline = "A Life Upgrade Systems!"
	brandCR      = "CR No: 7053332230"
	brandAddress = "Jeddah, Saudi Arabia"
	bankLine     = "Bank Transfer (Al-Rajhi Bank) IBAN: SA4680000540608016154327"
	vatRate      = 0.15
)

var paymentSchedule = []string{
	"• 40% Advance Payment upon acceptance.",
	"• 40% Second Payment upon commencement of installation.",
	"• 20% Final Payment upon handover.",
}

var warrantyTerms = []string{
	"1. 2-Year Warranty: Covers all hardware defects and software stability issues.",
	"2. Void Conditions: Warranty is void if device enclosures are opened or non-recommended items installed.",
	"3. Scope: Software support covers configuration corruption not caused by unauthorized user access.",
}

// DocumentGenerator renders quotes and invoices with gofpdf.
type DocumentGenerator struct {
	FontPath string // путь до TTF; пусто: встроенный Helvetica
	fontName string
}

func NewDocumentGenerator(fontPath string) *DocumentGenerator {
	name := "Helvetica"
	if fontPath != "" {
		name = "DejaVu"
	}
	return &DocumentGenerator{FontPath: fontPath, fontName: name}
}

// doc bundles the page with the text translator for the chosen font.
type doc struct {
	*gofpdf.Fpdf
	font string
	tr   func(string) string
}

func (g *DocumentGenerator) newDoc(title string) *doc {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAuthor(brandName, true)
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, 14)

	d := &doc{Fpdf: pdf, font: g.fontName, tr: func(s string) string { return s }}
	if g.FontPath != "" {
		// AddUTF8Font принимает путь до TTF
		pdf.AddUTF8Font(g.fontName, "", g.FontPath)
		pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
		pdf.AddUTF8Font(g.fontName, "I", g.FontPath)
	} else {
		d.tr = pdf.UnicodeTranslatorFromDescriptor("") // cp1252
	}
	pdf.AddPage()
	return d
}

func (d *doc) text(style string, size float64, x, y float64, s string) {
	d.SetFont(d.font, style, size)
	d.Text(x, y, d.tr(s))
}

func (d *doc) textRight(style string, size float64, right, y float64, s string) {
	d.SetFont(d.font, style, size)
	s = d.tr(s)
	d.Text(right-d.GetStringWidth(s), y, s)
}

func (d *doc) header(title string, meta ...string) {
	d.text("B", 26, 14, 22, brandName)
	d.SetTextColor(100, 100, 100)
	d.text("I", 10, 14, 28, brandTagline)
	d.SetTextColor(0, 0, 0)
	d.text("", 9, 14, 35, brandCR)
	d.text("", 9, 14, 40, brandAddress)

	d.textRight("B", 16, 195, 22, title)
	y := 30.0
	for _, m := range meta {
		d.textRight("", 10, 195, y, m)
		y += 5
	}
	d.SetDrawColor(220, 220, 220)
	d.SetLineWidth(0.5)
	d.Line(14, 45, 196, 45)
}

func (d *doc) billTo(lines ...string) {
	d.text("B", 10, 14, 55, "Bill To:")
	y := 61.0
	for _, l := range lines {
		d.text("", 10, 14, y, l)
		y += 5
	}
}

// table draws a black header row and grid body; returns the y below it.
func (d *doc) table(y float64, widths []float64, aligns []string, head []string, rows [][]string) float64 {
	d.SetXY(14, y)
	d.SetFont(d.font, "B", 9)
	d.SetFillColor(0, 0, 0)
	d.SetTextColor(255, 255, 255)
	d.SetDrawColor(200, 200, 200)
	for i, h := range head {
		d.CellFormat(widths[i], 8, d.tr(h), "1", 0, aligns[i], true, 0, "")
	}
	d.Ln(-1)
	d.SetTextColor(0, 0, 0)
	d.SetFont(d.font, "", 9)
	for _, row := range rows {
		d.SetX(14)
		for i, cell := range row {
			d.CellFormat(widths[i], 7, d.tr(cell), "1", 0, aligns[i], false, 0, "")
		}
		d.Ln(-1)
	}
	return d.GetY()
}

func (d *doc) totalLine(style string, size, y float64, label, value string) {
	d.text(style, size, 140, y, label)
	d.textRight(style, size, 195, y, value)
}

// WriteQuote renders the quotation: header, bill-to, items, totals, bank line,
// the 40/40/20 schedule and the warranty terms.
func (g *DocumentGenerator) WriteQuote(w io.Writer, q *models.Quote, issued time.Time) error {
	d := g.newDoc("Quotation " + quoteRef(q))
	d.header("QUOTATION",
		"Date: "+issued.Format("02/01/2006"),
		"Ref: #"+quoteRef(q),
	)
	d.billTo(q.CustomerName, q.CustomerPhone, "Project Type: "+strings.ToUpper(q.ProjectType))

	rows := make([][]string, 0, len(q.Items))
	for _, it := range q.Items {
		rows = append(rows, []string{
			it.Name,
			strings.ToUpper(string(it.Type)),
			strconv.Itoa(it.Quantity),
			Money(it.UnitPrice) + " SAR",
			Money(it.Total) + " SAR",
		})
	}
	y := d.table(80,
		[]float64{80, 25, 15, 31, 31},
		[]string{"L", "L", "C", "R", "R"},
		[]string{"Description", "Type", "Qty", "Unit Price", "Total"},
		rows,
	) + 10

	subtotal := q.GrandTotal / (1 + vatRate)
	d.totalLine("", 10, y, "Subtotal:", Money(subtotal)+" SAR")
	d.totalLine("", 10, y+6, "VAT (15%):", Money(q.GrandTotal-subtotal)+" SAR")
	d.totalLine("B", 14, y+16, "Grand Total:", Money(q.GrandTotal)+" SAR")

	d.SetTextColor(80, 80, 80)
	d.text("", 9, 14, y+26, bankLine)
	d.SetTextColor(0, 0, 0)

	_, pageH := d.GetPageSize()
	payY := math.Max(pageH-65, y+34)
	if payY+50 > pageH {
		d.AddPage()
		payY = 20
	}
	d.text("B", 9, 14, payY, "Payment Schedule:")
	for i, line := range paymentSchedule {
		d.text("", 9, 14, payY+6+float64(i)*5, line)
	}

	termsY := payY + 30
	d.SetDrawColor(200, 200, 200)
	d.Line(14, termsY, 196, termsY)
	d.SetTextColor(80, 80, 80)
	d.text("B", 8, 14, termsY+8, "Warranty & Terms of Service:")
	for i, t := range warrantyTerms {
		d.text("", 8, 14, termsY+13+float64(i)*4, t)
	}

	return d.Output(w)
}

var invoiceDescription = map[models.InvoiceType]string{
	models.InvoiceDownPayment:  "40% Advance Payment - Smart Home Project",
	models.InvoiceInstallation: "40% Progress Payment - Installation Phase",
	models.InvoiceHandover:     "20% Final Payment - Project Handover",
}

// WriteInvoice renders a tax invoice for one project payment.
func (g *DocumentGenerator) WriteInvoice(w io.Writer, inv *models.Invoice, p *models.Project) error {
	d := g.newDoc("Invoice " + inv.InvoiceRef)
	d.header("TAX INVOICE",
		"Invoice No: "+inv.InvoiceRef,
		"Date: "+inv.CreatedAt.Format("02/01/2006"),
		"Status: "+strings.ToUpper(string(inv.Status)),
	)
	customer := "Valued Customer"
	phone, projectType := "", ""
	if p != nil {
		customer, phone, projectType = p.CustomerName, p.CustomerPhone, p.ProjectType
	}
	d.billTo(customer, phone)

	desc, ok := invoiceDescription[inv.Type]
	if !ok {
		desc = "Custom Service Payment"
	}
	y := d.table(80,
		[]float64{90, 50, 42},
		[]string{"L", "L", "R"},
		[]string{"Description", "Reference Project", "Total Amount"},
		[][]string{{desc, strings.ToUpper(projectType) + " Project", Money(float64(inv.Amount)) + " SAR"}},
	) + 10

	net := float64(inv.Amount) / (1 + vatRate)
	d.totalLine("", 10, y, "Subtotal:", Money(net)+" SAR")
	d.totalLine("", 10, y+6, "VAT (15%):", Money(float64(inv.Amount)-net)+" SAR")
	d.totalLine("B", 11, y+16, "Total Due", Money(float64(inv.Amount))+" SAR")

	bankY := y + 28
	if inv.AmountPaid > 0 {
		d.SetTextColor(0, 150, 0)
		d.totalLine("", 10, y+24, "Amount Paid:", "- "+Money(float64(inv.AmountPaid))+" SAR")
		d.SetTextColor(200, 0, 0)
		d.totalLine("", 10, y+30, "Balance Due:", Money(float64(inv.Balance()))+" SAR")
		bankY = y + 42
	}
	d.SetTextColor(80, 80, 80)
	d.text("", 9, 14, bankY, bankLine)
	d.SetTextColor(0, 0, 0)

	return d.Output(w)
}

func quoteRef(q *models.Quote) string {
	return strings.ToUpper(q.ID.String()[:8])
}

// Money formats an amount with thousands separators and at most two decimals.
func Money(v float64) string {
	neg := v < 0
	v = math.Round(math.Abs(v)*100) / 100
	whole := int64(v)
	frac := int64(math.Round((v - float64(whole)) * 100))

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if frac > 0 {
		fmt.Fprintf(&b, ".%02d", frac)
	}
	return b.String()
}

// Filename for downloads.
func QuoteFilename(q *models.Quote, issued time.Time) string {
	return fmt.Sprintf("Quote_%s_%s.pdf", quoteRef(q), issued.Format("2006-01-02"))
}

func InvoiceFilename(inv *models.Invoice) string {
	return fmt.Sprintf("Invoice_%s.pdf", inv.InvoiceRef)
}
