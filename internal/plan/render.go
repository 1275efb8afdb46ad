package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
)

// Output formats accepted by Render.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists every format Render accepts.
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// Render writes p to w in the given format.
func Render(w io.Writer, p *Plan, format string) error {
	switch format {
	case FormatText:
		return renderText(w, p)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case FormatYAML:
		data, err := yaml.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to encode plan as YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown output format %q: must be one of %s", format, strings.Join(Formats, ", "))
	}
}

func renderText(w io.Writer, p *Plan) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tOVERLAYS")
	for _, e := range p.Tests {
		overlays := "-"
		if len(e.Overlays) > 0 {
			overlays = strings.Join(e.Overlays, ",")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Kind, overlays)
	}
	return tw.Flush()
}
