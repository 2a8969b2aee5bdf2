package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/delphi-cli/internal/model"
)

func sampleControls() ControlsResult {
	return ControlsResult{
		Form:  "frmLogin",
		TS:    1707500000,
		Count: 1,
		Controls: []model.Control{
			{Handle: 0, ClassName: "TcxButton", Name: "Btn_Login", Text: "Login", Left: 10, Top: 10, Width: 80, Height: 24, Visible: true, Enabled: true},
		},
	}
}

func capture(t *testing.T, format Format, pretty bool, v interface{}) string {
	t.Helper()
	var buf bytes.Buffer
	old, oldFormat, oldPretty := Stdout, OutputFormat, PrettyOutput
	Stdout, OutputFormat, PrettyOutput = &buf, format, pretty
	defer func() { Stdout, OutputFormat, PrettyOutput = old, oldFormat, oldPretty }()

	if err := Print(v); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestPrint_YAML(t *testing.T) {
	out := capture(t, FormatYAML, false, sampleControls())

	if strings.Count(out, "\n") <= 1 {
		t.Errorf("YAML output should be multi-line, got:\n%s", out)
	}
	var decoded ControlsResult
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.Form != "frmLogin" {
		t.Errorf("form: got %q, want %q", decoded.Form, "frmLogin")
	}
	if len(decoded.Controls) != 1 || decoded.Controls[0].Name != "Btn_Login" {
		t.Errorf("controls: got %+v", decoded.Controls)
	}
}

func TestPrint_JSONCompact(t *testing.T) {
	out := capture(t, FormatJSON, false, sampleControls())

	if strings.Count(out, "\n") > 1 {
		t.Errorf("compact output should be single line, got:\n%s", out)
	}
	var decoded ControlsResult
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Count != 1 {
		t.Errorf("count: got %d, want 1", decoded.Count)
	}
}

func TestPrint_JSONPretty(t *testing.T) {
	out := capture(t, FormatJSON, true, sampleControls())
	if strings.Count(out, "\n") <= 1 {
		t.Errorf("pretty output should be multi-line, got:\n%s", out)
	}
}

func TestPrint_NoHTMLEscaping(t *testing.T) {
	out := capture(t, FormatJSON, false, map[string]string{"text": "Save & Close <F2>"})
	if !strings.Contains(out, "Save & Close <F2>") {
		t.Errorf("text should not be HTML-escaped, got %s", out)
	}
}

func TestControlsResult_OmitEmpty(t *testing.T) {
	data, err := json.Marshal(ControlsResult{TS: 123, Controls: []model.Control{}})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["form"]; ok {
		t.Error("empty form should be omitted")
	}
	if _, ok := m["ts"]; !ok {
		t.Error("ts should always be present")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"json", FormatJSON, false},
		{"xml", FormatYAML, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMarshal(t *testing.T) {
	s, err := Marshal(FormsResult{Count: 1, Forms: []model.Form{{Handle: 7, Title: "Main", Visible: true}}}, FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(s, "title: Main") {
		t.Errorf("missing title in:\n%s", s)
	}

	if _, err := Marshal(nil, Format("toml")); err == nil {
		t.Error("expected error for unsupported format")
	}
}
