// Package certificate draws course completion certificates as PNG images.
package certificate

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	width  = 1600
	height = 1131
)

var (
	background = color.NRGBA{R: 0xFB, G: 0xF8, B: 0xF1, A: 0xFF}
	accent     = color.NRGBA{R: 0x1F, G: 0x3A, B: 0x5F, A: 0xFF}
	muted      = color.NRGBA{R: 0x5C, G: 0x63, B: 0x70, A: 0xFF}
)

// Details is what gets printed on a certificate.
type Details struct {
	LearnerName      string
	CourseTitle      string
	InstructorName   string
	IssueDate        time.Time
	VerificationCode string
}

type Renderer struct {
	regular *truetype.Font
	bold    *truetype.Font
}

func NewRenderer() (*Renderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	return &Renderer{regular: regular, bold: bold}, nil
}

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
}

// Render returns the certificate encoded as PNG.
func (r *Renderer) Render(d Details) ([]byte, error) {
	dc := gg.NewContext(width, height)
	dc.SetColor(background)
	dc.Clear()

	// double border
	dc.SetColor(accent)
	dc.SetLineWidth(12)
	dc.DrawRectangle(40, 40, width-80, height-80)
	dc.Stroke()
	dc.SetLineWidth(3)
	dc.DrawRectangle(70, 70, width-140, height-140)
	dc.Stroke()

	cx := float64(width) / 2

	dc.SetFontFace(face(r.bold, 72))
	dc.DrawStringAnchored("CERTIFICATE OF COMPLETION", cx, 240, 0.5, 0.5)

	dc.SetColor(muted)
	dc.SetFontFace(face(r.regular, 34))
	dc.DrawStringAnchored("This certifies that", cx, 360, 0.5, 0.5)

	dc.SetColor(accent)
	dc.SetFontFace(face(r.bold, 64))
	dc.DrawStringAnchored(d.LearnerName, cx, 460, 0.5, 0.5)
	dc.SetLineWidth(2)
	dc.DrawLine(cx-420, 510, cx+420, 510)
	dc.Stroke()

	dc.SetColor(muted)
	dc.SetFontFace(face(r.regular, 34))
	dc.DrawStringAnchored("has successfully completed the course", cx, 580, 0.5, 0.5)

	dc.SetColor(accent)
	dc.SetFontFace(face(r.bold, 48))
	dc.DrawStringWrapped(d.CourseTitle, cx, 680, 0.5, 0.5, width-400, 1.3, gg.AlignCenter)

	dc.SetColor(muted)
	dc.SetFontFace(face(r.regular, 28))
	if d.InstructorName != "" {
		dc.DrawStringAnchored("Instructor: "+d.InstructorName, cx, 820, 0.5, 0.5)
	}
	dc.DrawStringAnchored("Issued "+d.IssueDate.UTC().Format("January 2, 2006"), cx, 870, 0.5, 0.5)

	dc.SetFontFace(face(r.regular, 24))
	dc.DrawStringAnchored("Verification code: "+d.VerificationCode, cx, 980, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
