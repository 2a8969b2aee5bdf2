package target

import (
	"fmt"
	"strings"

	"github.com/mj1618/delphi-cli/internal/model"
)

// DefaultEdgeInset keeps edge clicks off the border pixel.
const DefaultEdgeInset = 10

// Anchor names the point of a control's rectangle that a click hits.
type Anchor string

const (
	AnchorCenter Anchor = "center"
	AnchorLeft   Anchor = "left"
	AnchorRight  Anchor = "right"
	AnchorTop    Anchor = "top"
	AnchorBottom Anchor = "bottom"
)

// ParseAnchor converts a flag value. "" means AnchorCenter.
func ParseAnchor(s string) (Anchor, error) {
	switch a := Anchor(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return AnchorCenter, nil
	case AnchorCenter, AnchorLeft, AnchorRight, AnchorTop, AnchorBottom:
		return a, nil
	default:
		return AnchorCenter, fmt.Errorf("unknown anchor: %q (expected center, left, right, top, or bottom)", s)
	}
}

// ClickPoint returns the point of r selected by a. Edge anchors sit at the
// middle of that edge, moved inward by inset; the inset never crosses the
// center line.
func ClickPoint(r model.Rect, a Anchor, inset int) model.Point {
	cx := r.Left + r.Width/2
	cy := r.Top + r.Height/2
	dx := min(inset, r.Width/2)
	dy := min(inset, r.Height/2)

	switch a {
	case AnchorLeft:
		return model.Point{X: r.Left + dx, Y: cy}
	case AnchorRight:
		return model.Point{X: r.Right() - dx, Y: cy}
	case AnchorTop:
		return model.Point{X: cx, Y: r.Top + dy}
	case AnchorBottom:
		return model.Point{X: cx, Y: r.Bottom() - dy}
	default:
		return model.Point{X: cx, Y: cy}
	}
}
