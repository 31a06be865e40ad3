package paginate

import (
	"io"

	"github.com/jung-kurt/gofpdf"

	"lawclerk/internal/doc"
)

const (
	bodyFontSize    = 11
	headingFontSize = 13
)

// PDF is the concrete render surface for the paginator: it supplies font
// metrics for layout and writes the resulting op stream to a PDF document.
type PDF struct {
	f *gofpdf.Fpdf
	g Geometry
}

func NewPDF(g Geometry) *PDF {
	f := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: g.Width, Ht: g.Height},
	})
	// The paginator owns page breaks; the library must not add its own.
	f.SetAutoPageBreak(false, 0)
	return &PDF{f: f, g: g}
}

func (p *PDF) setFont(role Role) {
	if role == RoleHeading {
		p.f.SetFont("Helvetica", "B", headingFontSize)
		return
	}
	p.f.SetFont("Helvetica", "", bodyFontSize)
}

// TextWidth implements Measurer with the active font's metrics.
func (p *PDF) TextWidth(text string, role Role) float64 {
	p.setFont(role)
	return p.f.GetStringWidth(text)
}

// Render writes the op stream. Op Y coordinates are treated as baselines.
func (p *PDF) Render(pages []Page) {
	for _, page := range pages {
		p.f.AddPage()
		for _, op := range page.Ops {
			p.setFont(op.Role)
			p.f.Text(op.X, op.Y, op.Text)
		}
	}
}

// Output finalizes the document and writes it.
func (p *PDF) Output(w io.Writer) error {
	return p.f.Output(w)
}

func (p *PDF) Err() error {
	if p.f.Err() {
		return p.f.Error()
	}
	return nil
}

// WritePDF structures raw draft text, paginates it against the PDF surface's
// own metrics, and writes the finished document. This is the local export
// path; backend-authored downloads bypass it entirely.
func WritePDF(text string, g Geometry, w io.Writer) error {
	surface := NewPDF(g)
	pages := Paginate(doc.Structure(text), g, surface)
	surface.Render(pages)
	if err := surface.Err(); err != nil {
		return err
	}
	return surface.Output(w)
}
