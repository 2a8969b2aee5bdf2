package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/delphi-cli/internal/model"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, "":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return FormatYAML, fmt.Errorf("unsupported output format: %s (expected yaml or json)", s)
}

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// Stdout is where Print writes. Tests swap it for a buffer.
var Stdout io.Writer = os.Stdout

// FormsResult is the output of the `forms` command.
type FormsResult struct {
	TS    int64        `yaml:"ts"    json:"ts"`
	Count int          `yaml:"count" json:"count"`
	Forms []model.Form `yaml:"forms" json:"forms"`
}

// ControlsResult is the output of `controls` and `find`.
type ControlsResult struct {
	Form     string          `yaml:"form,omitempty" json:"form,omitempty"`
	TS       int64           `yaml:"ts"             json:"ts"`
	Count    int             `yaml:"count"          json:"count"`
	Controls []model.Control `yaml:"controls"       json:"controls"`
}

// FlatControlsResult is the output of `controls --flat`.
type FlatControlsResult struct {
	Form     string              `yaml:"form,omitempty" json:"form,omitempty"`
	TS       int64               `yaml:"ts"             json:"ts"`
	Count    int                 `yaml:"count"          json:"count"`
	Controls []model.FlatControl `yaml:"controls"       json:"controls"`
}

// Print serializes v to Stdout in the current output format.
func Print(v interface{}) error {
	return Fprint(Stdout, v, OutputFormat, PrettyOutput)
}

// Fprint serializes v to w. pretty only affects JSON.
func Fprint(w io.Writer, v interface{}, format Format, pretty bool) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		if pretty {
			enc.SetIndent("", "  ")
		}
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("json encode: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// Marshal renders v as text in format.
func Marshal(v interface{}, format Format) (string, error) {
	var buf bytes.Buffer
	if err := Fprint(&buf, v, format, true); err != nil {
		return "", err
	}
	return buf.String(), nil
}
