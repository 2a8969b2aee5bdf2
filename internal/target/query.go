package target

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mj1618/delphi-cli/internal/model"
)

var (
	// ErrNotFound is returned when no control or window matches.
	ErrNotFound = errors.New("not found")

	// ErrEmptyQuery is returned for a query with neither an automation id
	// nor a caption.
	ErrEmptyQuery = errors.New("specify an automation id, a caption, or both")

	// ErrBridgeRequired is returned when an automation-id lookup cannot
	// fall back to native windows, which have no component names.
	ErrBridgeRequired = errors.New("automation id lookup needs the delphi bridge")
)

// ControlSource is the part of the bridge client that lookups need.
// *bridge.Client implements it.
type ControlSource interface {
	ActiveFormControls(ctx context.Context) ([]model.Control, error)
	FormControls(ctx context.Context, handle int) ([]model.Control, error)
	Controls(ctx context.Context, filter model.ControlFilter) ([]model.Control, error)
}

// Scope selects where FindControls searches.
type Scope int

const (
	// ScopeActiveForm searches only the focused form's tree. Component
	// names are unique per form, not per application.
	ScopeActiveForm Scope = iota
	// ScopeGlobal lets the bridge search every form.
	ScopeGlobal
)

// ParseScope converts a flag value. "" means ScopeActiveForm.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "active-form", "activeform", "active":
		return ScopeActiveForm, nil
	case "global", "all":
		return ScopeGlobal, nil
	default:
		return ScopeActiveForm, fmt.Errorf("unknown scope: %q (expected active-form or global)", s)
	}
}

func (s Scope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "active-form"
}

// Policy decides what happens when several controls match.
type Policy int

const (
	// PolicyFirst keeps the first match in traversal order.
	PolicyFirst Policy = iota
	// PolicyAll keeps every match.
	PolicyAll
)

// Query selects controls by exact component Name and/or caption. When both
// are set both must match.
type Query struct {
	AutoID  string
	Caption string
	Scope   Scope
	Policy  Policy
}

// Empty reports whether the query has no criteria.
func (q Query) Empty() bool {
	return q.AutoID == "" && q.Caption == ""
}

func (q Query) String() string {
	var parts []string
	if q.AutoID != "" {
		parts = append(parts, fmt.Sprintf("auto_id=%q", q.AutoID))
	}
	if q.Caption != "" {
		parts = append(parts, fmt.Sprintf("caption=%q", q.Caption))
	}
	if len(parts) == 0 {
		return "<empty>"
	}
	return strings.Join(parts, " ")
}

// FindControls runs q against src. In ScopeGlobal the bridge filters with
// its flat query; in ScopeActiveForm the active tree is fetched once and
// searched depth-first. No disambiguation is attempted: under PolicyFirst
// the first match wins.
func FindControls(ctx context.Context, src ControlSource, q Query) ([]model.Control, error) {
	if q.Empty() {
		return nil, ErrEmptyQuery
	}

	var matches []model.Control
	switch q.Scope {
	case ScopeGlobal:
		controls, err := src.Controls(ctx, model.ControlFilter{Name: q.AutoID, Caption: q.Caption})
		if err != nil {
			return nil, err
		}
		matches = controls
	default:
		tree, err := src.ActiveFormControls(ctx)
		if err != nil {
			return nil, err
		}
		matches = model.FindControls(tree, q.AutoID, q.Caption)
	}
	return applyPolicy(matches, q.Policy), nil
}

func applyPolicy(matches []model.Control, p Policy) []model.Control {
	if p == PolicyFirst && len(matches) > 1 {
		return matches[:1]
	}
	return matches
}

// nativeMatches selects child windows whose text equals caption.
func nativeMatches(windows []model.Window, caption string) []model.Control {
	var out []model.Control
	for _, w := range windows {
		if w.Title == caption {
			out = append(out, w.AsControl())
		}
	}
	return out
}
