package target

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/delphi-cli/internal/model"
)

func addConfirmDialog(h *harness) {
	h.windows.top = append(h.windows.top,
		model.Window{Handle: 7007, Title: "Confirm", ClassName: model.DialogClass, PID: 42, Visible: true,
			Rect: model.Rect{Left: 400, Top: 300, Width: 320, Height: 140}},
		// Same class, other process.
		model.Window{Handle: 8008, Title: "Other", ClassName: model.DialogClass, PID: 99, Visible: true},
		// Hidden dialog of the same process.
		model.Window{Handle: 9009, Title: "Hidden", ClassName: model.DialogClass, PID: 42},
	)
	long := make([]rune, 200)
	for i := range long {
		long[i] = 'x'
	}
	h.windows.children[7007] = []model.Window{
		{Handle: 7101, Title: "&Yes", ClassName: "Button", Visible: true, ControlID: 6},
		{Handle: 7102, Title: "&No", ClassName: "Button", Visible: true, ControlID: 7},
		{Handle: 7103, Title: string(long), ClassName: "Static", Visible: true},
		{Handle: 7104, Title: "hidden", ClassName: "Button"},
		{Handle: 7105, ClassName: "DirectUIHWND", Visible: true},
	}
}

func TestDetectNativeDialogs(t *testing.T) {
	h := newHarness()
	addConfirmDialog(h)

	dialogs, err := h.t.DetectNativeDialogs()
	require.NoError(t, err)
	require.Len(t, dialogs, 1)

	d := dialogs[0]
	assert.Equal(t, 7007, d.Handle)
	assert.Equal(t, "Confirm", d.Title)
	assert.Equal(t, model.DialogClass, d.Class)
	assert.Equal(t, model.Rect{Left: 400, Top: 300, Width: 320, Height: 140}, d.Rect)

	require.Len(t, d.Controls, 3)
	assert.Equal(t, model.DialogControl{Class: "Button", Handle: 7101, Text: "&Yes", ID: 6}, d.Controls[0])
	assert.Equal(t, "Static", d.Controls[2].Class)
	assert.Len(t, []rune(d.Controls[2].Text), maxDialogText)
}

func TestDetectNativeDialogs_None(t *testing.T) {
	h := newHarness()
	dialogs, err := h.t.DetectNativeDialogs()
	require.NoError(t, err)
	assert.Empty(t, dialogs)

	h.windows.foreground = model.Window{}
	dialogs, err = h.t.DetectNativeDialogs()
	require.NoError(t, err)
	assert.Nil(t, dialogs)
}

func TestDescribeActiveForm(t *testing.T) {
	h := newHarness()
	tree := loginTree()
	tree[0].Children = append(tree[0].Children, model.Control{ClassName: "TLabel", Name: "Lbl_User", Text: "User", Visible: true})
	src := &fakeSource{active: tree}

	report, err := h.t.DescribeActiveForm(context.Background(), src, model.FlattenOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, report.Count)
	assert.Empty(t, report.NativeDialogs)
	assert.Empty(t, report.Warning)

	addConfirmDialog(h)
	report, err = h.t.DescribeActiveForm(context.Background(), src, model.FlattenOptions{IncludeLabels: true})
	require.NoError(t, err)
	assert.Equal(t, 5, report.Count)
	assert.Len(t, report.NativeDialogs, 1)
	assert.Equal(t, DialogWarning, report.Warning)
}

func TestDescribeActiveForm_WithoutNativeBackends(t *testing.T) {
	src := &fakeSource{active: loginTree()}
	report, err := New(nil).DescribeActiveForm(context.Background(), src, model.FlattenOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, report.Count)
}

func TestDescribeActiveForm_BridgeError(t *testing.T) {
	h := newHarness()
	_, err := h.t.DescribeActiveForm(context.Background(), &fakeSource{err: errBridgeDown}, model.FlattenOptions{})
	assert.ErrorIs(t, err, errBridgeDown)
}

func TestDescribeActiveForm_EmptyTree(t *testing.T) {
	h := newHarness()
	report, err := h.t.DescribeActiveForm(context.Background(), &fakeSource{}, model.FlattenOptions{})
	require.NoError(t, err)
	assert.Zero(t, report.Count)
	assert.NotNil(t, report.Controls)
}
