package widgets

import (
	"image"
	"image/color"
	"math"

	pomodoro "github.com/d093w1z/pomodoro/api"
	"github.com/d093w1z/gio/f32"
	"github.com/d093w1z/gio/layout"
	"github.com/d093w1z/gio/op/clip"
	"github.com/d093w1z/gio/op/paint"
	"github.com/d093w1z/gio/text"
	"github.com/d093w1z/gio/unit"
	"github.com/d093w1z/gio/widget/material"
)

const (
	ringSize      = 200
	ringThickness = 10
	ringSegments  = 60
)

var (
	white      = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	grey       = color.NRGBA{R: 0x9E, G: 0x9E, B: 0x9E, A: 0xFF}
	trackColor = color.NRGBA{R: 0x3D, G: 0x3D, B: 0x3D, A: 0xFF}
	background = color.NRGBA{R: 0x01, G: 0x01, B: 0x01, A: 0xFF}
	ringStart  = color.NRGBA{R: 0xF1, G: 0x1D, B: 0x28, A: 0x00}
	ringEnd    = color.NRGBA{R: 0xFF, G: 0xA1, B: 0x2C, A: 0xFF} // FFA12C
)

// Linear interpolation of colors
func lerpColor(c1, c2 color.NRGBA, t float32) color.NRGBA {
	return color.NRGBA{
		R: uint8(float32(c1.R) + t*(float32(c2.R)-float32(c1.R))),
		G: uint8(float32(c1.G) + t*(float32(c2.G)-float32(c1.G))),
		B: uint8(float32(c1.B) + t*(float32(c2.B)-float32(c1.B))),
		A: uint8(float32(c1.A) + t*(float32(c2.A)-float32(c1.A))),
	}
}

// segmentsFor is how many of ringSegments are lit at progress p.
func segmentsFor(p float32) int {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return ringSegments
	}
	return int(float32(ringSegments) * p)
}

// DrawGradientRing fills the elapsed share of the ring clockwise from the top.
func DrawGradientRing(gtx layout.Context, progress float32, startColor, endColor color.NRGBA) layout.Dimensions {
	size := gtx.Dp(unit.Dp(ringSize))
	center := float32(size) / 2
	outerRadius := center
	innerRadius := outerRadius - ringThickness

	maxSeg := segmentsFor(progress)
	if maxSeg == 0 {
		return layout.Dimensions{Size: image.Pt(size, size)}
	}

	segmentAngle := float32(2 * math.Pi / float64(ringSegments))

	for i := 0; i < maxSeg; i++ {
		startAngle := float32(i)*segmentAngle - math.Pi/2 // Start from top
		endAngle := startAngle + segmentAngle

		// interpolate only within the drawn arc
		t := float32(0)
		if maxSeg > 1 {
			t = float32(i) / float32(maxSeg-1)
		}
		c := lerpColor(startColor, endColor, t)

		startCos, startSin := math.Cos(float64(startAngle)), math.Sin(float64(startAngle))
		endCos, endSin := math.Cos(float64(endAngle)), math.Sin(float64(endAngle))

		outerStart := f32.Pt(center+outerRadius*float32(startCos), center+outerRadius*float32(startSin))
		outerEnd := f32.Pt(center+outerRadius*float32(endCos), center+outerRadius*float32(endSin))
		innerStart := f32.Pt(center+innerRadius*float32(startCos), center+innerRadius*float32(startSin))
		innerEnd := f32.Pt(center+innerRadius*float32(endCos), center+innerRadius*float32(endSin))

		var p clip.Path
		p.Begin(gtx.Ops)
		p.MoveTo(outerStart)
		p.QuadTo(arcControl(center, outerRadius, startAngle+segmentAngle/2, segmentAngle), outerEnd)
		p.LineTo(innerEnd)
		p.QuadTo(arcControl(center, innerRadius, endAngle-segmentAngle/2, segmentAngle), innerStart)
		p.Close()

		paint.FillShape(gtx.Ops, c, clip.Outline{Path: p.End()}.Op())
	}

	return layout.Dimensions{Size: image.Pt(size, size)}
}

// arcControl is the quadratic bezier control point approximating an arc of
// the given span around midAngle.
func arcControl(center, radius, midAngle, span float32) f32.Point {
	r := radius / float32(math.Cos(float64(span/4)))
	return f32.Pt(
		center+r*float32(math.Cos(float64(midAngle))),
		center+r*float32(math.Sin(float64(midAngle))),
	)
}

// Timer draws the progress ring with the remaining time and status inside.
func Timer(th *material.Theme, s pomodoro.Snapshot) layout.FlexChild {
	return layout.Rigid(func(gtx layout.Context) layout.Dimensions {
		return layout.Stack{Alignment: layout.Center}.Layout(gtx,
			layout.Stacked(func(gtx layout.Context) layout.Dimensions {
				size := gtx.Dp(unit.Dp(ringSize))
				rect := image.Rect(0, 0, size, size)

				// Outer ring ellipse
				outer := clip.Ellipse{Min: rect.Min, Max: rect.Max}.Op(gtx.Ops)
				paint.FillShape(gtx.Ops, trackColor, outer)

				DrawGradientRing(gtx, float32(s.Progress()), ringStart, ringEnd)

				// Inner circle (cutout effect)
				innerRect := rect.Inset(gtx.Dp(unit.Dp(ringThickness)))
				inner := clip.Ellipse{Min: innerRect.Min, Max: innerRect.Max}.Op(gtx.Ops)
				paint.FillShape(gtx.Ops, background, inner)
				return layout.Dimensions{Size: rect.Size()}
			}),
			layout.Stacked(func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Vertical, Alignment: layout.Middle}.Layout(gtx,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						m := material.H3(th, s.Format())
						m.Alignment = text.Middle
						m.Color = white
						return m.Layout(gtx)
					}),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						m := material.Body2(th, pomodoro.StatusText(s))
						m.Alignment = text.Middle
						m.Color = grey
						return m.Layout(gtx)
					}),
				)
			}))
	})
}

// Footer is the short explanation under the controls.
func Footer(th *material.Theme, total int) layout.FlexChild {
	return layout.Rigid(func(gtx layout.Context) layout.Dimensions {
		m := material.Caption(th, pomodoro.FooterText(total))
		m.Alignment = text.Middle
		m.Color = grey
		return m.Layout(gtx)
	})
}
