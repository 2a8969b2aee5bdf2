package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/delphi-cli/internal/bridge"
	"github.com/mj1618/delphi-cli/internal/model"
	"github.com/mj1618/delphi-cli/internal/platform"
	"github.com/mj1618/delphi-cli/internal/target"
)

const loginTree = `[{"handle": 1001, "className": "TfrmLogin", "name": "frmLogin", "text": "Login",
  "left": 0, "top": 0, "width": 300, "height": 200, "children": [
    {"handle": 0, "className": "TcxTextEdit", "name": "TE_Username", "left": 10, "top": 50, "width": 150, "height": 21},
    {"handle": 0, "className": "TcxButton", "name": "Btn_Login", "text": "OK", "left": 10, "top": 10, "width": 80, "height": 24},
    {"handle": 0, "className": "TLabel", "name": "Lbl_User", "text": "User", "left": 10, "top": 30, "width": 40, "height": 13}
  ]}]`

const mainTree = `[{"handle": 1001, "className": "TfrmMain", "name": "frmMain", "text": "Main",
  "left": 0, "top": 0, "width": 600, "height": 400, "children": [
    {"handle": 0, "className": "TcxButton", "name": "Btn_Search", "text": "Search", "left": 20, "top": 40, "width": 100, "height": 30}
  ]}]`

// bridgeServer is a fake bridge whose active-form and form hits are
// counted. After switchAfter active-form reads it serves next instead of
// the login tree; activeStatus makes active-form reads fail.
type bridgeServer struct {
	*httptest.Server
	activeHits   atomic.Int32
	formHits     atomic.Int32
	next         string
	switchAfter  int32
	activeStatus int
}

func newBridgeServer(t *testing.T) *bridgeServer {
	t.Helper()
	b := &bridgeServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/forms", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"handle": 1001, "title": "Login", "className": "TfrmLogin"}]`)
	})
	mux.HandleFunc("/activeform/controls", func(w http.ResponseWriter, r *http.Request) {
		hits := b.activeHits.Add(1)
		if b.activeStatus != 0 {
			w.WriteHeader(b.activeStatus)
			return
		}
		if b.next != "" && hits > b.switchAfter {
			fmt.Fprint(w, b.next)
			return
		}
		fmt.Fprint(w, loginTree)
	})
	mux.HandleFunc("/forms/1001/controls", func(w http.ResponseWriter, r *http.Request) {
		b.formHits.Add(1)
		fmt.Fprint(w, loginTree)
	})
	mux.HandleFunc("/controls", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "Btn_Login" {
			fmt.Fprint(w, `[{"handle": 0, "className": "TcxButton", "name": "Btn_Login", "text": "OK", "left": 10, "top": 10, "width": 80, "height": 24}]`)
			return
		}
		fmt.Fprint(w, `[]`)
	})
	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Close)
	return b
}

func (b *bridgeServer) port(t *testing.T) int {
	t.Helper()
	addr, ok := b.Listener.Addr().(*net.TCPAddr)
	require.True(t, ok)
	return addr.Port
}

type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) has(prefix string) bool {
	for _, e := range r.events {
		if strings.HasPrefix(e, prefix) {
			return true
		}
	}
	return false
}

type fakeWindows struct {
	rec        *recorder
	top        []model.Window
	children   map[int][]model.Window
	foreground model.Window
}

func (f *fakeWindows) ListWindows(opts platform.ListOptions) ([]model.Window, error) {
	var out []model.Window
	for _, w := range f.top {
		if opts.Match(w.PID, w.ClassName, w.Title, w.Visible) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWindows) ChildWindows(handle int) ([]model.Window, error) {
	return f.children[handle], nil
}

func (f *fakeWindows) ForegroundWindow() (model.Window, error) { return f.foreground, nil }

func (f *fakeWindows) FocusWindow(handle int) error {
	f.rec.add("focus %d", handle)
	return nil
}

func (f *fakeWindows) WindowRect(handle int) (model.Rect, error) {
	for _, ws := range f.children {
		for _, w := range ws {
			if w.Handle == handle {
				return w.Rect, nil
			}
		}
	}
	return model.Rect{}, fmt.Errorf("invalid window handle %d", handle)
}

func (f *fakeWindows) ClientOrigin(handle int) (model.Point, error) {
	if handle != 1001 {
		return model.Point{}, fmt.Errorf("invalid window handle %d", handle)
	}
	return model.Point{X: 200, Y: 300}, nil
}

type fakeInput struct{ rec *recorder }

func (f *fakeInput) Click(x, y int, button platform.MouseButton, count int) error {
	f.rec.add("click %d,%d %s", x, y, button)
	return nil
}
func (f *fakeInput) MoveMouse(x, y int) error  { return nil }
func (f *fakeInput) KeyPress(key string) error { f.rec.add("key %s", key); return nil }
func (f *fakeInput) KeyCombo(keys []string) error {
	f.rec.add("combo %s", strings.Join(keys, "+"))
	return nil
}
func (f *fakeInput) TypeText(text string, _ int) error {
	f.rec.add("type %s", text)
	return nil
}
func (f *fakeInput) TypeUnicode(text string) error { f.rec.add("unicode %s", text); return nil }

type fakeSetter struct{ rec *recorder }

func (f *fakeSetter) SetWindowText(handle int, text string) error {
	f.rec.add("settext %d %q", handle, text)
	return nil
}

// testDesktop is a foreground login form at client origin (200,300).
func testDesktop(rec *recorder) *fakeWindows {
	login := model.Window{Handle: 1001, Title: "Login", ClassName: "TfrmLogin", PID: 42, Visible: true}
	return &fakeWindows{
		rec:        rec,
		top:        []model.Window{login},
		foreground: login,
		children: map[int][]model.Window{
			1001: {{Handle: 2002, Title: "OK", ClassName: "Button", Visible: true, Enabled: true,
				Rect: model.Rect{Left: 400, Top: 500, Width: 60, Height: 20}}},
		},
	}
}

func noSleep(context.Context, time.Duration) error { return nil }

// newTestServer wires a Server to the fake desktop and, when b is non-nil,
// to a bridge at b's fixed port. Without b no bridge is reachable.
func newTestServer(t *testing.T, b *bridgeServer) (*Server, *fakeWindows, *recorder) {
	t.Helper()
	rec := &recorder{}
	wm := testDesktop(rec)
	p := &platform.Provider{
		WindowManager: wm,
		Inputter:      &fakeInput{rec: rec},
		ValueSetter:   &fakeSetter{rec: rec},
	}
	cfg := bridge.Config{ProbeTimeout: time.Second, RequestTimeout: time.Second}
	if b != nil {
		cfg.Port = b.port(t)
	}
	s := New(Config{CacheTTL: time.Minute}, bridge.NewManager(cfg, nil, nil), target.New(p, target.WithSleep(noSleep)), nil)
	return s, wm, rec
}

func call(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := fn(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "first content is %T", res.Content[0])
	return tc.Text
}
