// Package sheet lays out the frames of a multi-instance render as a
// printable PDF contact sheet.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/jung-kurt/gofpdf/v2"
)

const (
	pageW     = 595
	pageH     = 842
	margin    = 40
	headerH   = 56
	perRow    = 4
	cellGap   = 12
	captionH  = 12
	fontSize  = 8
	titleSize = 16
	dialR     = 7.0
)

var ErrNoFrames = errors.New("sheet: no frames")

// Generate returns PDF bytes with one cell per frame, in order, four to a
// row. Frames are taken to be evenly spaced turns of one full rotation,
// which the dial under each cell shows.
func Generate(frames []image.Image, title string) ([]byte, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)

	cellW := (pageW - 2*margin - (perRow-1)*cellGap) / float64(perRow)
	b := frames[0].Bounds()
	cellH := cellW
	if b.Dx() > 0 {
		cellH = cellW * float64(b.Dy()) / float64(b.Dx())
	}
	rowH := cellH + captionH + cellGap
	rowsPerPage := max(1, int((pageH-2*margin-headerH)/rowH))

	for i, frame := range frames {
		if i%(rowsPerPage*perRow) == 0 {
			pdf.AddPage()
			drawHeader(pdf, title, len(frames))
		}
		slot := i % (rowsPerPage * perRow)
		x := margin + float64(slot%perRow)*(cellW+cellGap)
		y := margin + headerH + float64(slot/perRow)*rowH

		var buf bytes.Buffer
		if err := png.Encode(&buf, frame); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		name := fmt.Sprintf("frame%d", i)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, &buf)

		// Light backdrop so transparent renders stay visible on paper.
		pdf.SetFillColor(236, 236, 240)
		pdf.Rect(x, y, cellW, cellH, "F")
		pdf.ImageOptions(name, x, y, cellW, cellH, false, opts, 0, "")
		pdf.SetDrawColor(120, 120, 130)
		pdf.Rect(x, y, cellW, cellH, "D")

		angle := float64(i) * 360 / float64(len(frames))
		drawDial(pdf, x+dialR+1, y+cellH+captionH/2+1, angle)
		pdf.SetFont("Helvetica", "", fontSize)
		pdf.SetTextColor(60, 60, 70)
		pdf.SetXY(x+2*dialR+4, y+cellH+2)
		pdf.CellFormat(cellW-2*dialR-4, captionH, fmt.Sprintf("#%d  %.0f deg", i+1, angle), "", 0, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawHeader(pdf *gofpdf.Fpdf, title string, count int) {
	if title == "" {
		title = "Contact Sheet"
	}
	pdf.SetTextColor(30, 30, 40)
	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(margin, margin)
	pdf.CellFormat(pageW-2*margin, 18, title, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", fontSize)
	pdf.SetXY(margin, margin+20)
	pdf.CellFormat(pageW-2*margin, 10, fmt.Sprintf("%d frames", count), "", 0, "L", false, 0, "")
	pdf.SetDrawColor(30, 30, 40)
	pdf.SetLineWidth(1)
	pdf.Line(margin, margin+headerH-12, pageW-margin, margin+headerH-12)
}

// drawDial draws a small circle with a hand pointing at angle degrees,
// zero at the top and turning clockwise.
func drawDial(pdf *gofpdf.Fpdf, cx, cy, angle float64) {
	pdf.SetDrawColor(120, 120, 130)
	pdf.SetLineWidth(0.5)
	pdf.Circle(cx, cy, dialR, "D")
	rad := angle*math.Pi/180 - math.Pi/2
	pdf.SetDrawColor(180, 40, 40)
	pdf.SetLineWidth(1.2)
	pdf.Line(cx, cy, cx+dialR*math.Cos(rad), cy+dialR*math.Sin(rad))
	pdf.SetLineWidth(1)
}
