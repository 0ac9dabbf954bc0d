// Package render draws comparison overlays: each bike's rider triangle and
// reconstructed skeleton, with the secondary bike mapped into the primary
// photo's frame through its alignment transform.
package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"

	"github.com/teslashibe/go-moto-ergo/pkg/alignment"
	"github.com/teslashibe/go-moto-ergo/pkg/analysis"
	"github.com/teslashibe/go-moto-ergo/pkg/geometry"
	"github.com/teslashibe/go-moto-ergo/pkg/skeleton"
)

// ErrNothingToDraw is returned when neither bike has a placed marker.
var ErrNothingToDraw = errors.New("nothing to draw")

// Default canvas and stroke settings.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
	margin        = 24.0
	boneWidth     = 6.0
	triangleWidth = 2.0
	markerRadius  = 6.0
	circleSteps   = 48
)

// Palette colours.
var (
	Background     = color.RGBA{0x18, 0x18, 0x1b, 0xff}
	PrimaryColor   = color.RGBA{0x38, 0xbd, 0xf8, 0xff}
	SecondaryColor = color.RGBA{0xfb, 0x92, 0x3c, 0xff}
)

// layer is one bike's drawable geometry in primary-photo pixel space.
type layer struct {
	colour   color.RGBA
	triangle []geometry.Point2D
	skeleton *skeleton.Joints
}

func layers(r analysis.Report) []layer {
	out := []layer{bikeLayer(r.Primary, PrimaryColor)}
	if r.Secondary != nil {
		out = append(out, bikeLayer(*r.Secondary, SecondaryColor))
	}
	return out
}

func bikeLayer(b analysis.BikeReport, c color.RGBA) layer {
	l := layer{colour: c}
	if b.Alignment.Scale == 0 {
		b.Alignment = alignment.Identity()
	}
	for _, p := range []*geometry.Point2D{b.Markers.Seat, b.Markers.Peg, b.Markers.Bar} {
		if p != nil {
			l.triangle = append(l.triangle, b.Alignment.Apply(*p))
		}
	}
	if b.Skeleton != nil {
		l.skeleton = b.Skeleton.Transform(b.Alignment.Apply)
	}
	return l
}

func (l layer) points() []geometry.Point2D {
	pts := append([]geometry.Point2D(nil), l.triangle...)
	if j := l.skeleton; j != nil {
		pts = append(pts, j.Hip, j.Knee, j.Foot, j.Shoulder, j.Elbow, j.Hand,
			j.Head.Center.Add(geometry.Pt(-j.Head.Radius, -j.Head.Radius)),
			j.Head.Center.Add(geometry.Pt(j.Head.Radius, j.Head.Radius)))
	}
	return pts
}

// fit maps photo coordinates onto a w×h canvas, preserving aspect ratio.
type fit struct {
	scale  float64
	offset geometry.Point2D
}

func newFit(pts []geometry.Point2D, w, h int) fit {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	spanX, spanY := maxX-minX, maxY-minY
	availX, availY := float64(w)-2*margin, float64(h)-2*margin

	scale := 1.0
	switch {
	case spanX > 0 && spanY > 0:
		scale = math.Min(availX/spanX, availY/spanY)
	case spanX > 0:
		scale = availX / spanX
	case spanY > 0:
		scale = availY / spanY
	}

	// Centre the content on the canvas.
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	return fit{
		scale:  scale,
		offset: geometry.Pt(float64(w)/2-cx*scale, float64(h)/2-cy*scale),
	}
}

func (f fit) apply(p geometry.Point2D) geometry.Point2D {
	return p.Scale(f.scale).Add(f.offset)
}

// Overlay rasterises r onto a new w×h image. Non-positive sizes select the
// defaults.
func Overlay(r analysis.Report, w, h int) (*image.RGBA, error) {
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}

	ls := layers(r)
	var all []geometry.Point2D
	for _, l := range ls {
		all = append(all, l.points()...)
	}
	if len(all) == 0 {
		return nil, ErrNothingToDraw
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)

	c := canvas{img: img, ras: vector.NewRasterizer(w, h), fit: newFit(all, w, h)}
	for _, l := range ls {
		c.layer(l)
	}
	return img, nil
}

// WritePNG renders r and encodes it as PNG.
func WritePNG(out io.Writer, r analysis.Report, w, h int) error {
	img, err := Overlay(r, w, h)
	if err != nil {
		return err
	}
	return png.Encode(out, img)
}

type canvas struct {
	img *image.RGBA
	ras *vector.Rasterizer
	fit fit
}

func (c canvas) layer(l layer) {
	src := image.NewUniform(l.colour)
	faintSrc := image.NewUniform(color.NRGBA{l.colour.R, l.colour.G, l.colour.B, 0x90})

	switch n := len(l.triangle); {
	case n == 2:
		c.line(l.triangle[0], l.triangle[1], triangleWidth, faintSrc)
	case n == 3:
		for i := range l.triangle {
			c.line(l.triangle[i], l.triangle[(i+1)%n], triangleWidth, faintSrc)
		}
	}

	if s := l.skeleton; s != nil {
		for _, bone := range s.Bones() {
			c.line(bone[0], bone[1], boneWidth, src)
		}
		c.ring(s.Head.Center, s.Head.Radius, boneWidth/2, src)
	}

	for _, p := range l.triangle {
		c.dot(p, markerRadius, src)
	}
}

// line strokes a segment as a quad. Widths and radii below are in canvas
// pixels; positions are in photo pixels.
func (c canvas) line(a, b geometry.Point2D, width float64, src image.Image) {
	pa, pb := c.fit.apply(a), c.fit.apply(b)
	d := pb.Sub(pa)
	length := math.Hypot(d.X, d.Y)
	if length == 0 {
		return
	}
	n := geometry.Pt(-d.Y/length, d.X/length).Scale(width / 2)

	c.reset()
	c.moveTo(pa.Add(n))
	c.lineTo(pb.Add(n))
	c.lineTo(pb.Sub(n))
	c.lineTo(pa.Sub(n))
	c.ras.ClosePath()
	c.ras.Draw(c.img, c.img.Bounds(), src, image.Point{})
}

func (c canvas) dot(center geometry.Point2D, radius float64, src image.Image) {
	c.reset()
	c.circle(c.fit.apply(center), radius, false)
	c.ras.Draw(c.img, c.img.Bounds(), src, image.Point{})
}

// ring strokes a circle; the inner path winds the other way so it cuts out.
func (c canvas) ring(center geometry.Point2D, radius, width float64, src image.Image) {
	ctr := c.fit.apply(center)
	r := radius * c.fit.scale
	c.reset()
	c.circle(ctr, r+width/2, false)
	if inner := r - width/2; inner > 0 {
		c.circle(ctr, inner, true)
	}
	c.ras.Draw(c.img, c.img.Bounds(), src, image.Point{})
}

func (c canvas) reset() {
	b := c.img.Bounds()
	c.ras.Reset(b.Dx(), b.Dy())
}

func (c canvas) circle(ctr geometry.Point2D, r float64, reverse bool) {
	for i := 0; i <= circleSteps; i++ {
		t := 2 * math.Pi * float64(i) / circleSteps
		if reverse {
			t = -t
		}
		p := geometry.Pt(ctr.X+r*math.Cos(t), ctr.Y+r*math.Sin(t))
		if i == 0 {
			c.moveTo(p)
		} else {
			c.lineTo(p)
		}
	}
	c.ras.ClosePath()
}

func (c canvas) moveTo(p geometry.Point2D) {
	c.ras.MoveTo(float32(p.X), float32(p.Y))
}

func (c canvas) lineTo(p geometry.Point2D) {
	c.ras.LineTo(float32(p.X), float32(p.Y))
}
