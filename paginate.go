package doceditor

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"sync"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	xdraw "golang.org/x/image/draw"
)

// pageEpsilon absorbs float noise so an exact multiple of the page height
// does not produce an extra blank page.
const pageEpsilon = 1e-6

// pdfCreator is written into the PDF metadata.
const pdfCreator = "doceditor"

// PageCount returns the number of pages needed for a raster of the given
// pixel size laid out at pageWidthMM x pageHeightMM. Always at least 1.
func PageCount(widthPX, heightPX int, pageWidthMM, pageHeightMM float64) int {
	if widthPX <= 0 || heightPX <= 0 || pageWidthMM <= 0 || pageHeightMM <= 0 {
		return 1
	}
	heightMM := float64(heightPX) * pageWidthMM / float64(widthPX)
	n := int(math.Ceil(heightMM/pageHeightMM - pageEpsilon))
	if n < 1 {
		return 1
	}
	return n
}

// pageLayout holds what the assembler needs to place a raster.
type pageLayout struct {
	Title string
	Page  *PageSettings
	Mode  SliceMode
}

// assemblePDF lays the raster out on pages and returns the PDF bytes and
// the page count.
func assemblePDF(r *Raster, layout pageLayout) ([]byte, int, error) {
	page := layout.Page
	pages := PageCount(r.WidthPX, r.HeightPX, page.WidthMM, page.HeightMM)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: page.WidthMM, Ht: page.HeightMM},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator(pdfCreator, true)
	if layout.Title != "" {
		pdf.SetTitle(layout.Title, true)
	}

	var err error
	switch layout.Mode {
	case SliceCrop:
		err = placeCrops(pdf, r, page, pages)
	default:
		placeOffsets(pdf, r, page, pages)
	}
	if err != nil {
		return nil, 0, err
	}

	if err := pdf.Error(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPDFAssembly, err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPDFAssembly, err)
	}
	return buf.Bytes(), pages, nil
}

// placeOffsets registers the raster once and draws it on every page shifted
// up by one page height per page.
func placeOffsets(pdf *gofpdf.Fpdf, r *Raster, page *PageSettings, pages int) {
	const name = "export-raster"
	opts := gofpdf.ImageOptions{ImageType: "PNG", AllowNegativePosition: true}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(r.PNG))

	heightMM := float64(r.HeightPX) * page.WidthMM / float64(r.WidthPX)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.ImageOptions(name, 0, -float64(i)*page.HeightMM, page.WidthMM, heightMM, false, opts, 0, "")
	}
}

// placeCrops cuts the raster into page-sized slices and draws one per page.
func placeCrops(pdf *gofpdf.Fpdf, r *Raster, page *PageSettings, pages int) error {
	src, err := png.Decode(bytes.NewReader(r.PNG))
	if err != nil {
		return fmt.Errorf("%w: decoding raster: %v", ErrPDFAssembly, err)
	}
	bounds := src.Bounds()
	slicePX := page.HeightMM * float64(bounds.Dx()) / page.WidthMM
	opts := gofpdf.ImageOptions{ImageType: "PNG"}

	for i := 0; i < pages; i++ {
		y0 := bounds.Min.Y + int(math.Round(float64(i)*slicePX))
		y1 := bounds.Min.Y + int(math.Round(float64(i+1)*slicePX))
		if y1 > bounds.Max.Y {
			y1 = bounds.Max.Y
		}
		if y0 >= y1 {
			break
		}

		dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), y1-y0))
		xdraw.Copy(dst, image.Point{}, src, image.Rect(bounds.Min.X, y0, bounds.Max.X, y1), xdraw.Src, nil)

		var buf bytes.Buffer
		if err := png.Encode(&buf, dst); err != nil {
			return fmt.Errorf("%w: encoding page %d: %v", ErrPDFAssembly, i+1, err)
		}

		name := fmt.Sprintf("export-page-%d", i+1)
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.AddPage()
		heightMM := float64(y1-y0) * page.WidthMM / float64(bounds.Dx())
		pdf.ImageOptions(name, 0, 0, page.WidthMM, heightMM, false, opts, 0, "")
	}
	return nil
}

// pdfcpuOnce keeps pdfcpu from writing a config directory in the user's home.
var pdfcpuOnce sync.Once

// validatePDF parses the assembled PDF and returns its page count.
func validatePDF(data []byte) (int, error) {
	pdfcpuOnce.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPDFValidation, err)
	}
	return ctx.PageCount, nil
}
