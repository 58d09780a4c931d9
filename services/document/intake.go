package document

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"math"
	"strings"

	"chelmassage/models"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

const (
	lineHeight     = 7.0
	labelWidth     = 40.0
	imageGap       = 10.0
	imagePadding   = 15.0
	minImageHeight = 40.0
	placeholderMsg = "[Image could not be rendered]"

	// MaxDrawingSide bounds each decoded drawing dimension in pixels.
	MaxDrawingSide = 4096
)

var (
	errNotDataURL      = errors.New("document: drawing is not a base64 data URL")
	errDrawingTooLarge = errors.New("document: drawing dimensions exceed the limit")
)

// PDFRenderer lays out intake forms as A4 PDFs.
type PDFRenderer struct {
	Logger *zap.Logger
}

func NewPDFRenderer(logger *zap.Logger) *PDFRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFRenderer{Logger: logger}
}

type intakePage struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	log *zap.Logger
}

func (r *PDFRenderer) RenderIntake(form models.IntakeForm) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	p := &intakePage{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), log: r.Logger}
	pdf.AddPage()

	name := form.ClientName()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 8, p.tr("Client Intake Form: "+name), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	p.section("Personal Information")
	p.line("Name:", name, false)
	p.line("DOB:", form.DOB, false)

	p.section("Visit Information")
	p.line("Booking:", form.Booking(), false)
	p.line("Email:", form.Email, false)
	p.line("Phone:", form.Phone, false)
	p.line("Reason for Visit:", form.Reason, true)

	p.section("Medical History")
	p.line("Conditions:", form.Conditions.String(), false)
	p.line("Allergies:", form.Allergies, true)
	pdf.Ln(5)

	if form.DrawingFront != "" || form.DrawingBack != "" {
		p.problemAreas(form.DrawingFront, form.DrawingBack)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("document: layout: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("document: output: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *intakePage) section(title string) {
	p.pdf.Ln(5)
	p.pdf.SetFont("Helvetica", "B", 14)
	p.pdf.CellFormat(0, 8, p.tr(title), "", 1, "L", false, 0, "")
	p.pdf.SetDrawColor(200, 200, 200)
	x, y := p.pdf.GetX(), p.pdf.GetY()
	p.pdf.Line(x, y, x+contentWidth(p.pdf), y)
	p.pdf.Ln(2)
}

// line writes a labelled value; empty values are skipped.
func (p *intakePage) line(label, value string, multiline bool) {
	if strings.TrimSpace(value) == "" {
		return
	}
	p.pdf.SetFont("Helvetica", "B", 12)
	p.pdf.CellFormat(labelWidth, lineHeight, p.tr(label), "", 0, "L", false, 0, "")
	p.pdf.SetFont("Helvetica", "", 12)
	if multiline {
		p.pdf.MultiCell(0, lineHeight, p.tr(value), "", "L", false)
		return
	}
	p.pdf.CellFormat(0, lineHeight, p.tr(value), "", 1, "L", false, 0, "")
}

// problemAreas draws the front and back body charts side by side.
func (p *intakePage) problemAreas(front, back string) {
	pdf := p.pdf
	_, pageH := pdf.GetPageSize()
	left, _, _, bottom := pdf.GetMargins()

	if pageH-pdf.GetY()-bottom-imagePadding-12 < minImageHeight {
		pdf.AddPage()
	}
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Problem Areas", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	width := contentWidth(pdf)/2 - 5
	maxHeight := pageH - pdf.GetY() - bottom - imagePadding
	top := pdf.GetY()

	drawn := 0.0
	for i, dataURL := range []string{front, back} {
		if dataURL == "" {
			continue
		}
		x := left + float64(i)*(width+imageGap)
		h, err := p.embed(fmt.Sprintf("drawing-%d", i), dataURL, x, top, width, maxHeight)
		if err != nil {
			p.log.Warn("intake drawing could not be rendered", zap.Int("index", i), zap.Error(err))
			pdf.SetXY(x, top)
			pdf.SetFont("Helvetica", "", 8)
			pdf.MultiCell(width, 10, placeholderMsg, "1", "C", false)
			h = 10
		}
		drawn = math.Max(drawn, h)
	}
	pdf.SetY(top + drawn + 10)
}

func (p *intakePage) embed(name, dataURL string, x, y, maxW, maxH float64) (float64, error) {
	img, err := decodeDataURL(dataURL)
	if err != nil {
		return 0, err
	}
	b := img.Bounds()
	w, h := fitImage(float64(b.Dx()), float64(b.Dy()), maxW, maxH)
	if w <= 0 || h <= 0 {
		return 0, errors.New("document: image scales to zero size")
	}

	var encoded bytes.Buffer
	if err := png.Encode(&encoded, flatten(img)); err != nil {
		return 0, err
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	p.pdf.RegisterImageOptionsReader(name, opts, &encoded)
	if p.pdf.Err() {
		err := p.pdf.Error()
		p.pdf.ClearError()
		return 0, err
	}
	p.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return h, nil
}

func decodeDataURL(dataURL string) (image.Image, error) {
	_, payload, ok := strings.Cut(dataURL, "base64,")
	if !ok {
		return nil, errNotDataURL
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("document: decoding drawing: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("document: decoding drawing: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxDrawingSide || cfg.Height > MaxDrawingSide {
		return nil, fmt.Errorf("%w: %dx%d", errDrawingTooLarge, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("document: decoding drawing: %w", err)
	}
	return img, nil
}

// flatten composites img onto white so the PDF gets a plain 8-bit RGB image.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

// fitImage scales (w, h) to fit within (maxW, maxH) keeping the aspect ratio.
func fitImage(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return 0, 0
	}
	scale := math.Min(maxW/w, maxH/h)
	return w * scale, h * scale
}

func contentWidth(pdf *fpdf.Fpdf) float64 {
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	return pageW - left - right
}
