package cmd

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/delphi-cli/internal/model"
	"github.com/mj1618/delphi-cli/internal/output"
	"github.com/mj1618/delphi-cli/internal/render"
	"github.com/mj1618/delphi-cli/internal/target"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{
		"discover", "forms", "controls", "find", "click", "type", "settext",
		"batch", "dialogs", "map", "serve", "version",
	}
	commands := rootCmd.Commands()

	found := make(map[string]bool)
	for _, c := range commands {
		found[c.Name()] = true
	}

	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

// fakeBridge serves a login form on a random local port.
func fakeBridge(t *testing.T) int {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/forms", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"handle": 1001, "title": "Login"}]`)
	})
	mux.HandleFunc("/activeform/controls", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"handle": 1001, "className": "TfrmLogin", "name": "frmLogin", "width": 300, "height": 200,
		  "children": [
		    {"handle": 0, "className": "TcxButton", "name": "Btn_Login", "text": "OK", "left": 10, "top": 10, "width": 80, "height": 24},
		    {"handle": 0, "className": "TLabel", "name": "Lbl_User", "text": "User", "left": 10, "top": 40, "width": 40, "height": 13}
		  ]}]`)
	})
	mux.HandleFunc("/controls", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("class") == "TcxButton" {
			fmt.Fprint(w, `[{"handle": 0, "className": "TcxButton", "name": "Btn_Login"}]`)
			return
		}
		fmt.Fprint(w, `[]`)
	})
	s := httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s.Listener.Addr().(*net.TCPAddr).Port
}

// run executes the CLI with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	saved := output.Stdout
	output.Stdout = &buf
	t.Cleanup(func() { output.Stdout = saved })

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestFormsCommand(t *testing.T) {
	port := fakeBridge(t)
	out, err := run(t, "forms", "--port", strconv.Itoa(port), "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "count: 1")
	assert.Contains(t, out, "title: Login")
}

func withSnapshotDir(t *testing.T) {
	t.Helper()
	saved := model.SnapshotDir
	model.SnapshotDir = t.TempDir()
	t.Cleanup(func() { model.SnapshotDir = saved })
}

func TestControlsCommand_Flat(t *testing.T) {
	withSnapshotDir(t)
	port := fakeBridge(t)
	out, err := run(t, "controls", "--flat", "--since", "0", "--port", strconv.Itoa(port), "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "automation_id: Btn_Login")
	assert.NotContains(t, out, "Lbl_User")
}

func TestControlsCommand_Since(t *testing.T) {
	withSnapshotDir(t)
	require.NoError(t, model.SaveSnapshot("active", 1, []model.FlatControl{
		{AutomationID: "Btn_Login", ClassName: "TcxButton", Text: "Sign in", Path: "frmLogin"},
		{AutomationID: "Btn_Old", ClassName: "TcxButton", Path: "frmLogin"},
	}))
	port := fakeBridge(t)
	out, err := run(t, "controls", "--flat", "--since", "1", "--port", strconv.Itoa(port), "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"since":1`)
	assert.Contains(t, out, `"changes":{"text":["Sign in","OK"]}`)
	assert.Contains(t, out, `"automation_id":"Btn_Old"`)

	_, err = run(t, "controls", "--flat", "--since", "2", "--port", strconv.Itoa(port), "--format", "json")
	assert.Error(t, err, "no snapshot at ts 2")
}

func TestControlsCommand_ByClass(t *testing.T) {
	port := fakeBridge(t)
	out, err := run(t, "controls", "--class", "TcxButton", "--flat=false", "--since", "0", "--port", strconv.Itoa(port), "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name":"Btn_Login"`)
	assert.Contains(t, out, `"form":"class TcxButton"`)
}

func TestFindCommand(t *testing.T) {
	port := fakeBridge(t)
	out, err := run(t, "find", "--id", "Btn_Login", "--caption", "", "--scope", "active-form", "--port", strconv.Itoa(port), "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "count: 1")
	assert.Contains(t, out, "name: Btn_Login")
}

func TestFindCommand_NeedsCriteria(t *testing.T) {
	_, err := run(t, "find", "--id", "", "--caption", "", "--format", "yaml")
	assert.ErrorIs(t, err, target.ErrEmptyQuery)
}

func TestReadSteps(t *testing.T) {
	steps, err := readSteps(strings.NewReader(`
- op: set_text
  id: TE_Username
  text: admin
- {op: click, id: Btn_Login, anchor: right, wait: 0.5}
`))
	require.NoError(t, err)
	require.Len(t, steps, 2)
	require.NotNil(t, steps[0].Text)
	assert.Equal(t, "admin", *steps[0].Text)
	assert.Equal(t, "right", steps[1].Anchor)
	require.NotNil(t, steps[1].Wait)
	assert.Equal(t, 0.5, *steps[1].Wait)

	steps, err = readSteps(strings.NewReader(`[{"op": "wait", "wait": 1}]`))
	require.NoError(t, err)
	assert.Len(t, steps, 1)

	_, err = readSteps(strings.NewReader(`[{"op": "click", "target": "x"}]`))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = readSteps(strings.NewReader(`[]`))
	assert.Error(t, err)
}

func TestParseLabelMode(t *testing.T) {
	for in, want := range map[string]render.LabelMode{
		"": render.LabelNames, "names": render.LabelNames, "coords": render.LabelCoords, "none": render.LabelNone,
	} {
		got, err := parseLabelMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := parseLabelMode("fancy")
	assert.Error(t, err)
}

func TestTextArg(t *testing.T) {
	newCmd := func() *cobra.Command {
		c := &cobra.Command{}
		c.Flags().String("text", "", "")
		return c
	}

	c := newCmd()
	got, err := textArg(c, []string{"admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin", got)

	c = newCmd()
	require.NoError(t, c.Flags().Set("text", ""))
	got, err = textArg(c, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = textArg(newCmd(), nil)
	assert.Error(t, err)
}
