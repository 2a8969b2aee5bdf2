package target

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/delphi-cli/internal/model"
	"github.com/mj1618/delphi-cli/internal/platform"
)

// ErrNoNativeHandle is returned by operations that need a native window
// on a non-windowed control.
var ErrNoNativeHandle = errors.New("control has no native window handle; use click-and-type instead")

// Default pauses.
const (
	DefaultClickSettle = 50 * time.Millisecond
	DefaultFocusSettle = 150 * time.Millisecond
	DefaultKeyInterval = 20 * time.Millisecond
	DefaultStepWait    = 100 * time.Millisecond
)

// Targeter resolves controls to screen points and drives them with the
// platform input backends. It is not safe for concurrent use.
type Targeter struct {
	// EdgeInset is how far edge anchors stay inside the rectangle.
	EdgeInset int
	// ClickSettle is the pause between focusing the form and clicking.
	ClickSettle time.Duration
	// FocusSettle is the pause between click-to-focus and typing.
	FocusSettle time.Duration
	// KeyInterval throttles ASCII typing; faster input drops characters.
	KeyInterval time.Duration
	// StepWait is the default pause after a batch step.
	StepWait time.Duration

	windows platform.WindowManager
	input   platform.Inputter
	values  platform.ValueSetter
	log     *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option configures a Targeter.
type Option func(*Targeter)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Targeter) { t.log = l }
}

// WithSleep replaces the pause function. Tests pass a no-op.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(t *Targeter) { t.sleep = fn }
}

// New creates a Targeter. p may be nil, or have nil backends, on platforms
// without native automation; operations that need them return
// platform.ErrUnsupported.
func New(p *platform.Provider, opts ...Option) *Targeter {
	t := &Targeter{
		EdgeInset:   DefaultEdgeInset,
		ClickSettle: DefaultClickSettle,
		FocusSettle: DefaultFocusSettle,
		KeyInterval: DefaultKeyInterval,
		StepWait:    DefaultStepWait,
		log:         zap.NewNop(),
		sleep:       sleepContext,
	}
	if p != nil {
		t.windows = p.WindowManager
		t.input = p.Inputter
		t.values = p.ValueSetter
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Located is a resolved control together with the form it belongs to.
type Located struct {
	Control model.Control
	Form    int
	// Native is set when the control came from a native window lookup
	// instead of the bridge.
	Native bool
}

// ResolveForm returns the handle of the top-level window whose title
// equals title (case-insensitive), or the foreground window when title is
// empty.
func (t *Targeter) ResolveForm(title string) (int, error) {
	if t.windows == nil {
		return 0, platform.ErrUnsupported
	}
	if title == "" {
		fg, err := t.windows.ForegroundWindow()
		if err != nil {
			return 0, fmt.Errorf("foreground window: %w", err)
		}
		if fg.Handle == 0 {
			return 0, fmt.Errorf("foreground window: %w", ErrNotFound)
		}
		return fg.Handle, nil
	}

	windows, err := t.windows.ListWindows(platform.ListOptions{})
	if err != nil {
		return 0, fmt.Errorf("list windows: %w", err)
	}
	for _, w := range windows {
		if strings.EqualFold(w.Title, title) {
			return w.Handle, nil
		}
	}
	return 0, fmt.Errorf("window %q: %w", title, ErrNotFound)
}

// ClientOrigin returns the screen position of form's client area.
func (t *Targeter) ClientOrigin(form int) (model.Point, error) {
	if t.windows == nil {
		return model.Point{}, platform.ErrUnsupported
	}
	return t.windows.ClientOrigin(form)
}

// Locate finds controls for q, preferring the bridge. When src is nil or
// the bridge query fails, caption queries are answered from form's native
// child windows; automation ids only exist in the bridge, so an id-only
// query returns the bridge error (or ErrBridgeRequired without a bridge).
// native reports whether the controls came from native windows.
func (t *Targeter) Locate(ctx context.Context, src ControlSource, q Query, form int) (controls []model.Control, native bool, err error) {
	if q.Empty() {
		return nil, false, ErrEmptyQuery
	}

	var bridgeErr error
	if src != nil {
		controls, err := FindControls(ctx, src, q)
		if err == nil {
			return controls, false, nil
		}
		bridgeErr = err
	}

	if q.Caption == "" {
		if bridgeErr != nil {
			return nil, false, bridgeErr
		}
		return nil, false, fmt.Errorf("find %s: %w", q, ErrBridgeRequired)
	}
	if t.windows == nil {
		if bridgeErr != nil {
			return nil, false, bridgeErr
		}
		return nil, false, platform.ErrUnsupported
	}

	t.log.Info("falling back to native child windows",
		zap.Stringer("query", q),
		zap.Int("form", form),
		zap.NamedError("bridge_error", bridgeErr))
	if q.AutoID != "" {
		t.log.Debug("native windows have no component names; matching caption only", zap.String("auto_id", q.AutoID))
	}
	children, err := t.windows.ChildWindows(form)
	if err != nil {
		return nil, true, fmt.Errorf("child windows of %d: %w", form, err)
	}
	return applyPolicy(nativeMatches(children, q.Caption), q.Policy), true, nil
}

// Resolve returns ctrl's current screen rectangle. Windowed controls are
// asked for directly. Non-windowed controls are placed at form's client
// origin plus their reported offset.
func (t *Targeter) Resolve(ctrl model.Control, form int) (model.Rect, error) {
	if t.windows == nil {
		return model.Rect{}, platform.ErrUnsupported
	}
	if ctrl.Windowed() {
		r, err := t.windows.WindowRect(ctrl.Handle)
		if err != nil {
			return model.Rect{}, fmt.Errorf("window rect of %d: %w", ctrl.Handle, err)
		}
		return r, nil
	}
	if form == 0 {
		return model.Rect{}, fmt.Errorf("control %q has no window handle and no owning form", ctrl.Name)
	}
	origin, err := t.windows.ClientOrigin(form)
	if err != nil {
		return model.Rect{}, fmt.Errorf("client origin of form %d: %w", form, err)
	}
	return ctrl.Bounds().Offset(origin), nil
}

// Click brings form to the foreground, waits ClickSettle, and left-clicks
// ctrl at anchor. It returns the screen point clicked.
func (t *Targeter) Click(ctx context.Context, ctrl model.Control, form int, anchor Anchor) (model.Point, error) {
	if t.windows == nil || t.input == nil {
		return model.Point{}, platform.ErrUnsupported
	}
	if form != 0 {
		if err := t.windows.FocusWindow(form); err != nil {
			t.log.Warn("cannot focus form", zap.Int("form", form), zap.Error(err))
		}
		if err := t.sleep(ctx, t.ClickSettle); err != nil {
			return model.Point{}, err
		}
	}

	rect, err := t.Resolve(ctrl, form)
	if err != nil {
		return model.Point{}, err
	}
	pt := ClickPoint(rect, anchor, t.EdgeInset)
	t.log.Debug("click",
		zap.String("name", ctrl.Name),
		zap.Int("handle", ctrl.Handle),
		zap.String("anchor", string(anchor)),
		zap.Int("x", pt.X),
		zap.Int("y", pt.Y))
	if err := t.input.Click(pt.X, pt.Y, platform.MouseLeft, 1); err != nil {
		return model.Point{}, fmt.Errorf("click at %d,%d: %w", pt.X, pt.Y, err)
	}
	return pt, nil
}

// SetText replaces ctrl's text: click its center to focus it, wait
// FocusSettle, select all, delete, then type. ASCII is typed key by key
// every KeyInterval; anything else goes through Unicode injection.
func (t *Targeter) SetText(ctx context.Context, ctrl model.Control, form int, text string) error {
	if _, err := t.Click(ctx, ctrl, form, AnchorCenter); err != nil {
		return fmt.Errorf("click to focus: %w", err)
	}
	if err := t.sleep(ctx, t.FocusSettle); err != nil {
		return err
	}
	if err := t.input.KeyCombo([]string{"ctrl", "a"}); err != nil {
		return fmt.Errorf("select all: %w", err)
	}
	if err := t.input.KeyPress("delete"); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if text == "" {
		return nil
	}
	if platform.IsASCII(text) {
		if err := t.input.TypeText(text, int(t.KeyInterval/time.Millisecond)); err != nil {
			return fmt.Errorf("type text: %w", err)
		}
		return nil
	}
	if err := t.input.TypeUnicode(text); err != nil {
		return fmt.Errorf("type unicode text: %w", err)
	}
	return nil
}

// SetTextDirect writes ctrl's native text buffer with WM_SETTEXT. It is
// fast but bypasses the toolkit: DevExpress editors keep their old value
// internally. Use SetText when that matters.
func (t *Targeter) SetTextDirect(ctrl model.Control, text string) error {
	if !ctrl.Windowed() {
		return fmt.Errorf("%s: %w", controlLabel(ctrl), ErrNoNativeHandle)
	}
	if t.values == nil {
		return platform.ErrUnsupported
	}
	if err := t.values.SetWindowText(ctrl.Handle, text); err != nil {
		return fmt.Errorf("set text of %d: %w", ctrl.Handle, err)
	}
	return nil
}

func controlLabel(c model.Control) string {
	switch {
	case c.Name != "":
		return c.Name
	case c.Text != "":
		return fmt.Sprintf("%q", c.Text)
	default:
		return c.ClassName
	}
}
