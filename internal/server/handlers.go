package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/mj1618/delphi-cli/internal/bridge"
	"github.com/mj1618/delphi-cli/internal/model"
	"github.com/mj1618/delphi-cli/internal/output"
	"github.com/mj1618/delphi-cli/internal/render"
	"github.com/mj1618/delphi-cli/internal/target"
)

// DiscoverResult is the output of delphi_discover.
type DiscoverResult struct {
	Connected bool   `yaml:"connected"         json:"connected"`
	URL       string `yaml:"url,omitempty"     json:"url,omitempty"`
	Port      int    `yaml:"port,omitempty"    json:"port,omitempty"`
	Forms     int    `yaml:"forms"             json:"forms"`
	Process   string `yaml:"process,omitempty" json:"process,omitempty"`
}

// ActionResult is the output of delphi_click and delphi_set_text.
type ActionResult struct {
	OK     bool         `yaml:"ok"               json:"ok"`
	Action string       `yaml:"action"           json:"action"`
	ID     string       `yaml:"id,omitempty"     json:"id,omitempty"`
	Text   string       `yaml:"text,omitempty"   json:"text,omitempty"`
	Handle int          `yaml:"handle,omitempty" json:"handle,omitempty"`
	Point  *model.Point `yaml:"point,omitempty"  json:"point,omitempty"`
	Native bool         `yaml:"native,omitempty" json:"native,omitempty"`
	Error  string       `yaml:"error,omitempty"  json:"error,omitempty"`
}

// DialogsResult is the output of native_dialogs.
type DialogsResult struct {
	Count   int                  `yaml:"count"             json:"count"`
	Dialogs []model.NativeDialog `yaml:"dialogs"           json:"dialogs"`
	Warning string               `yaml:"warning,omitempty" json:"warning,omitempty"`
}

// toText serializes v to YAML for an MCP response.
func toText(v interface{}) string {
	s, err := output.Marshal(v, output.FormatYAML)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return s
}

func textResult(v interface{}) *mcp.CallToolResult {
	return mcp.NewToolResultText(toText(v))
}

// bridgeError converts a bridge failure into a tool error with a hint.
func bridgeError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, bridge.ErrUnavailable):
		return mcp.NewToolResultError(err.Error() + ". Start the application, then call delphi_discover.")
	case errors.Is(err, bridge.ErrBridgeLost):
		return mcp.NewToolResultError(err.Error() + ". The application may have exited.")
	}
	return mcp.NewToolResultError("bridge request failed: " + err.Error())
}

func queryFrom(params map[string]interface{}) (target.Query, error) {
	scope, err := target.ParseScope(stringParam(params, "scope", ""))
	if err != nil {
		return target.Query{}, err
	}
	q := target.Query{
		AutoID:  stringParam(params, "auto_id", ""),
		Caption: stringParam(params, "caption", ""),
		Scope:   scope,
	}
	if boolParam(params, "all", false) {
		q.Policy = target.PolicyAll
	}
	return q, nil
}

func (s *Server) handleDiscover(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	process := stringParam(request.GetArguments(), "process", "")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.InvalidateAll()
	c, err := s.bridges.Rediscover(ctx, process)
	if err != nil {
		return bridgeError(err), nil
	}
	res := DiscoverResult{Connected: true, URL: c.BaseURL(), Port: c.Port(), Process: process}
	if forms, err := c.Forms(ctx); err == nil {
		res.Forms = len(forms)
	}
	return textResult(res), nil
}

func (s *Server) handleForms(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.bridges.Bridge(ctx)
	if err != nil {
		return bridgeError(err), nil
	}
	forms, err := c.Forms(ctx)
	if err != nil {
		return bridgeError(err), nil
	}
	return textResult(output.FormsResult{TS: time.Now().Unix(), Count: len(forms), Forms: forms}), nil
}

func (s *Server) handleActiveForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	opts := model.FlattenOptions{
		IncludeHidden:     boolParam(params, "include_hidden", false),
		IncludeLabels:     boolParam(params, "include_labels", false),
		IncludeContainers: boolParam(params, "include_containers", false),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.source(ctx)
	if err != nil {
		return bridgeError(err), nil
	}
	report, err := s.targeter.DescribeActiveForm(ctx, src, opts)
	if err != nil {
		return bridgeError(err), nil
	}
	return textResult(report), nil
}

func (s *Server) handleFind(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := queryFrom(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.source(ctx)
	if err != nil {
		return bridgeError(err), nil
	}
	controls, err := target.FindControls(ctx, src, q)
	if errors.Is(err, target.ErrEmptyQuery) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return bridgeError(err), nil
	}
	if controls == nil {
		controls = []model.Control{}
	}
	return textResult(output.ControlsResult{TS: time.Now().Unix(), Count: len(controls), Controls: controls}), nil
}

// locate resolves the owning form and the first matching control, using
// native windows when the bridge is down.
func (s *Server) locate(ctx context.Context, params map[string]interface{}) (model.Control, int, bool, error) {
	q, err := queryFrom(params)
	if err != nil {
		return model.Control{}, 0, false, err
	}
	q.Policy = target.PolicyFirst

	form, err := s.targeter.ResolveForm(stringParam(params, "window_title", ""))
	if err != nil {
		return model.Control{}, 0, false, err
	}

	var src target.ControlSource
	if cs, err := s.source(ctx); err == nil {
		src = cs
	} else {
		s.log.Info("bridge unavailable, using native windows", zap.Error(err))
	}

	controls, native, err := s.targeter.Locate(ctx, src, q, form)
	if err != nil {
		return model.Control{}, form, native, err
	}
	if len(controls) == 0 {
		return model.Control{}, form, native, fmt.Errorf("control %s: %w", q, target.ErrNotFound)
	}
	return controls[0], form, native, nil
}

func (s *Server) handleClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	anchor, err := target.ParseAnchor(stringParam(params, "anchor", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := ActionResult{Action: "click"}
	ctrl, form, native, err := s.locate(ctx, params)
	if err != nil {
		res.Error = err.Error()
		return mcp.NewToolResultError(toText(res)), nil
	}
	res.ID, res.Text, res.Handle, res.Native = ctrl.Name, ctrl.Text, ctrl.Handle, native

	pt, err := s.targeter.Click(ctx, ctrl, form, anchor)
	s.cache.InvalidateAll()
	if err != nil {
		res.Error = err.Error()
		return mcp.NewToolResultError(toText(res)), nil
	}
	res.OK = true
	res.Point = &pt
	return textResult(res), nil
}

func (s *Server) handleSetText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	text, ok := params["text"].(string)
	if !ok {
		return mcp.NewToolResultError("text parameter is required"), nil
	}
	direct := boolParam(params, "direct", false)

	s.mu.Lock()
	defer s.mu.Unlock()

	res := ActionResult{Action: "set_text"}
	if direct {
		res.Action = "set_text_direct"
	}
	ctrl, form, native, err := s.locate(ctx, params)
	if err != nil {
		res.Error = err.Error()
		return mcp.NewToolResultError(toText(res)), nil
	}
	res.ID, res.Handle, res.Native = ctrl.Name, ctrl.Handle, native

	if direct {
		err = s.targeter.SetTextDirect(ctrl, text)
	} else {
		err = s.targeter.SetText(ctx, ctrl, form, text)
	}
	s.cache.InvalidateAll()
	if err != nil {
		res.Error = err.Error()
		return mcp.NewToolResultError(toText(res)), nil
	}
	res.OK = true
	return textResult(res), nil
}

func (s *Server) handleBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	var steps []target.Step
	if err := decodeParam(params, "steps", &steps); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(steps) == 0 {
		return mcp.NewToolResultError("steps must not be empty"), nil
	}
	opts := target.BatchOptions{
		Scope:         target.ScopeActiveForm,
		ReportChanges: boolParam(params, "report_changes", false),
	}
	if !boolParam(params, "active_form_only", true) {
		opts.Scope = target.ScopeGlobal
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.source(ctx)
	if err != nil {
		return bridgeError(err), nil
	}
	form, err := s.targeter.ResolveForm(stringParam(params, "window_title", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// Every step must see the UI the previous step left behind.
	src.cache = NewTreeCache(0)

	res := s.targeter.RunBatch(ctx, src, form, steps, opts)
	s.cache.InvalidateAll()
	if !res.OK {
		return mcp.NewToolResultError(toText(res)), nil
	}
	return textResult(res), nil
}

func (s *Server) handleDialogs(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dialogs, err := s.targeter.DetectNativeDialogs()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := DialogsResult{Count: len(dialogs), Dialogs: dialogs}
	if res.Dialogs == nil {
		res.Dialogs = []model.NativeDialog{}
	}
	if len(dialogs) > 0 {
		res.Warning = target.DialogWarning
	}
	return textResult(res), nil
}

func (s *Server) handleLayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	formHandle := intParam(params, "form", 0)
	opts := render.Options{
		Scale:         floatParam(params, "scale", 1),
		IncludeHidden: boolParam(params, "include_hidden", false),
	}
	switch stringParam(params, "labels", "names") {
	case "names":
		opts.Labels = render.LabelNames
	case "coords":
		opts.Labels = render.LabelCoords
	case "none":
		opts.Labels = render.LabelNone
	default:
		return mcp.NewToolResultError("labels must be names, coords, or none"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.source(ctx)
	if err != nil {
		return bridgeError(err), nil
	}
	var tree []model.Control
	if formHandle != 0 {
		tree, err = src.FormControls(ctx, formHandle)
	} else {
		tree, err = src.ActiveFormControls(ctx)
	}
	if err != nil {
		return bridgeError(err), nil
	}
	if formHandle == 0 && len(tree) == 1 {
		formHandle = tree[0].Handle
	}
	if opts.Labels == render.LabelCoords && formHandle != 0 {
		if origin, err := s.targeter.ClientOrigin(formHandle); err == nil {
			opts.Origin = origin
		} else {
			s.log.Debug("no client origin for coordinate labels", zap.Int("form", formHandle), zap.Error(err))
		}
	}

	data, err := render.EncodePNG(tree, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: fmt.Sprintf("form %d: %d controls", formHandle, model.CountControls(tree)),
			},
			mcp.ImageContent{
				Type:     "image",
				Data:     base64.StdEncoding.EncodeToString(data),
				MIMEType: "image/png",
			},
		},
	}, nil
}
