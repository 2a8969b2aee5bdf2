// Package render draws a form's control layout, as the bridge reports it,
// into a PNG. The picture is built from coordinates alone, so it shows
// non-windowed controls that screenshots and OS accessibility tools miss.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mj1618/delphi-cli/internal/model"
)

// LabelMode controls what text is drawn in each control's box.
type LabelMode int

const (
	// LabelNames draws the component Name, or the class when unnamed.
	LabelNames LabelMode = iota
	// LabelCoords draws the "(x,y)" screen point a center click would hit.
	LabelCoords
	// LabelNone draws boxes only.
	LabelNone
)

// maxCanvas bounds either side of the output image.
const maxCanvas = 8192

// Glyph metrics of basicfont.Face7x13.
const (
	glyphW = 7
	glyphH = 13
)

// Options configures Wireframe.
type Options struct {
	Labels        LabelMode
	Scale         float64     // 0 means 1
	Origin        model.Point // client-area screen origin, for LabelCoords
	IncludeHidden bool
}

var (
	background   = color.RGBA{R: 250, G: 250, B: 250, A: 255}
	formColor    = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	windowedBox  = color.RGBA{R: 30, G: 90, B: 220, A: 255}  // has an HWND
	paintedBox   = color.RGBA{R: 220, G: 40, B: 40, A: 255}  // bridge-only
	disabledBox  = color.RGBA{R: 180, G: 180, B: 180, A: 255}
	textColor    = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	outlineColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// ErrEmptyLayout is returned when there is nothing with a size to draw.
var ErrEmptyLayout = errors.New("control tree has no visible controls with a size")

// Wireframe draws tree. A single root with children is taken to be the
// form: it sets the canvas size and its descendants are drawn at their
// client-relative offsets. Otherwise every node is drawn and the canvas
// grows to fit.
func Wireframe(tree []model.Control, opts Options) (*image.RGBA, error) {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	nodes := tree
	var w, h int
	if len(tree) == 1 && len(tree[0].Children) > 0 {
		nodes = tree[0].Children
		w, h = tree[0].Width, tree[0].Height
	}

	boxes := collectBoxes(nodes, opts.IncludeHidden, nil)
	if len(boxes) == 0 {
		return nil, ErrEmptyLayout
	}
	for _, b := range boxes {
		w = max(w, b.Left+b.Width)
		h = max(h, b.Top+b.Height)
	}

	cw, ch := int(float64(w)*scale)+1, int(float64(h)*scale)+1
	if cw > maxCanvas || ch > maxCanvas {
		return nil, fmt.Errorf("layout %dx%d exceeds %dpx canvas limit; use a smaller scale", cw, ch, maxCanvas)
	}
	img := image.NewRGBA(image.Rect(0, 0, cw, ch))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	drawRectangle(img, 0, 0, cw, ch, formColor)

	for _, b := range boxes {
		x := int(float64(b.Left) * scale)
		y := int(float64(b.Top) * scale)
		bw := int(float64(b.Width) * scale)
		bh := int(float64(b.Height) * scale)

		c := paintedBox
		switch {
		case !b.Enabled:
			c = disabledBox
		case b.Windowed():
			c = windowedBox
		}
		drawRectangle(img, x, y, x+bw, y+bh, c)

		if label := labelFor(b, opts); label != "" {
			drawTextWithOutline(img, fitLabel(label, bw), x+bw/2, y+bh/2, textColor, outlineColor)
		}
	}
	return img, nil
}

// collectBoxes lists drawable nodes in paint order. A hidden node hides
// its subtree.
func collectBoxes(nodes []model.Control, includeHidden bool, out []model.Control) []model.Control {
	for _, c := range nodes {
		if !c.Visible && !includeHidden {
			continue
		}
		if c.Width > 0 && c.Height > 0 {
			out = append(out, c)
		}
		out = collectBoxes(c.Children, includeHidden, out)
	}
	return out
}

// EncodePNG renders and encodes the wireframe.
func EncodePNG(tree []model.Control, opts Options) ([]byte, error) {
	img, err := Wireframe(tree, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}

func labelFor(c model.Control, opts Options) string {
	switch opts.Labels {
	case LabelNone:
		return ""
	case LabelCoords:
		return fmt.Sprintf("(%d,%d)", opts.Origin.X+c.Left+c.Width/2, opts.Origin.Y+c.Top+c.Height/2)
	default:
		if c.Name != "" {
			return c.Name
		}
		return c.ClassName
	}
}

// fitLabel truncates label to what fits in width pixels.
func fitLabel(label string, width int) string {
	n := width / glyphW
	if n <= 0 {
		return ""
	}
	return model.TruncateText(label, n)
}

func isWithinBounds(bounds image.Rectangle, x, y int) bool {
	return x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y
}

// drawRectangle draws a rectangle outline, clamped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	bounds := img.Bounds()
	x1, y1 = max(x1, bounds.Min.X), max(y1, bounds.Min.Y)
	x2, y2 = min(x2, bounds.Max.X), min(y2, bounds.Max.Y)
	if x2 <= x1 || y2 <= y1 {
		return
	}

	for x := x1; x < x2; x++ {
		img.Set(x, y1, c)
		img.Set(x, y2-1, c)
	}
	for y := y1; y < y2; y++ {
		img.Set(x1, y, c)
		img.Set(x2-1, y, c)
	}
}

// drawTextWithOutline centers text on (x, y) with a one-pixel halo.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, fg, halo color.Color) {
	if text == "" {
		return
	}
	originX := x - len([]rune(text))*glyphW/2
	baseline := y + glyphH/2 - 2

	d := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	d.Src = image.NewUniform(halo)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			d.Dot = fixed.P(originX+dx, baseline+dy)
			d.DrawString(text)
		}
	}
	d.Src = image.NewUniform(fg)
	d.Dot = fixed.P(originX, baseline)
	d.DrawString(text)
}
