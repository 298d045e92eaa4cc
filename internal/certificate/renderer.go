package certificate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"

	"certgen/internal/domain"
	"certgen/internal/infra/assets"
)

// Fixed layout of the recipient name, in PDF points with the origin at the
// bottom-left corner of the first page.
const (
	NameX    = 280.0
	NameY    = 330.0
	FontSize = 36.0

	fontFamily = "certificate"
	mediaBox   = "/MediaBox"
)

// NameColor is RGB(0.82, 0.10, 0.10) on the 0-255 scale.
var NameColor = [3]int{209, 26, 26}

// renderEpoch pins the document creation date so identical input yields
// identical output.
var renderEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// AssetLoader provides the template and font for a single render.
type AssetLoader interface {
	Load() (assets.Assets, error)
}

// Renderer fills the certificate template with a recipient name.
type Renderer struct {
	loader AssetLoader
}

func NewRenderer(loader AssetLoader) *Renderer {
	return &Renderer{loader: loader}
}

// Render returns the template PDF with name drawn on its first page.
func (r *Renderer) Render(ctx context.Context, name string) ([]byte, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name", domain.ErrMissingField)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a, err := r.loader.Load()
	if err != nil {
		return nil, err
	}
	return fill(a, name)
}

// fill imports every template page and draws the name. The gofpdi importer
// panics on unreadable input, so panics are converted to render failures.
func fill(a assets.Assets, name string) (out []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = fmt.Errorf("%w: template: %v", domain.ErrRenderFailure, rec)
		}
	}()

	var rs io.ReadSeeker = bytes.NewReader(a.Template)
	imp := gofpdi.NewImporter()

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: 595.28, Ht: 841.89},
	})
	pdf.SetCreationDate(renderEpoch)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)

	first := imp.ImportPageFromStream(pdf, &rs, 1, mediaBox)
	sizes := imp.GetPageSizes()
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: template has no pages", domain.ErrRenderFailure)
	}

	pdf.AddUTF8FontFromBytes(fontFamily, "", a.Font)
	if pdf.Err() {
		return nil, fmt.Errorf("%w: font: %v", domain.ErrRenderFailure, pdf.Error())
	}

	for page := 1; page <= len(sizes); page++ {
		w, h, err := pageSize(sizes, page)
		if err != nil {
			return nil, err
		}
		tpl := first
		if page > 1 {
			tpl = imp.ImportPageFromStream(pdf, &rs, page, mediaBox)
		}
		// Explicit sizes are already oriented; "P" keeps width and height as given.
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
		imp.UseImportedTemplate(pdf, tpl, 0, 0, w, h)

		if page == 1 {
			pdf.SetFont(fontFamily, "", FontSize)
			pdf.SetTextColor(NameColor[0], NameColor[1], NameColor[2])
			// gofpdf measures y from the top edge.
			pdf.Text(NameX, h-NameY, name)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailure, err)
	}
	return buf.Bytes(), nil
}

func pageSize(sizes map[int]map[string]map[string]float64, page int) (float64, float64, error) {
	box, ok := sizes[page][mediaBox]
	if !ok || box["w"] <= 0 || box["h"] <= 0 {
		return 0, 0, fmt.Errorf("%w: page %d has no media box", domain.ErrRenderFailure, page)
	}
	return box["w"], box["h"], nil
}
