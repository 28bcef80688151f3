package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BenjaminSRussell/macwinua/internal/types"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding for a header set
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHTTP Format = "http"
	FormatCurl Format = "curl"
)

// Formats lists every supported header set format
var Formats = []Format{FormatJSON, FormatYAML, FormatHTTP, FormatCurl}

// ParseFormat validates a user supplied format name
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of %v)", s, Formats)
}

// Options tune the rendered output
type Options struct {
	// URL is the request target for curl output
	URL string
}

// WriteHeaders renders hs to w, keeping header order
func WriteHeaders(w io.Writer, hs types.HeaderSet, format Format, opts Options) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, hs)
	case FormatYAML:
		return writeYAML(w, hs)
	case FormatHTTP:
		return writeHTTP(w, hs)
	case FormatCurl:
		return writeCurl(w, hs, opts.URL)
	}
	return fmt.Errorf("unknown format %q", format)
}

func writeJSON(w io.Writer, hs types.HeaderSet) error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, h := range hs.Headers() {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		name, err := marshalString(h.Name)
		if err != nil {
			return err
		}
		value, err := marshalString(h.Value)
		if err != nil {
			return err
		}
		buf.Write(name)
		buf.WriteString(": ")
		buf.Write(value)
	}
	if hs.Len() > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// marshalString encodes s as a JSON string without HTML escaping
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func writeYAML(w io.Writer, hs types.HeaderSet) error {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, h := range hs.Headers() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: h.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: h.Value},
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}
	return enc.Close()
}

func writeHTTP(w io.Writer, hs types.HeaderSet) error {
	for _, h := range hs.Headers() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", h.Name, h.Value); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return nil
}

func writeCurl(w io.Writer, hs types.HeaderSet, url string) error {
	if url == "" {
		url = "https://example.com/"
	}

	var b strings.Builder
	b.WriteString("curl " + shellQuote(url))
	for _, h := range hs.Headers() {
		b.WriteString(" \\\n  -H " + shellQuote(h.Name+": "+h.Value))
	}
	b.WriteString("\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write curl command: %w", err)
	}
	return nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// WriteAgentsCSV writes the agent rows of a table as CSV
func WriteAgentsCSV(w io.Writer, table types.Table) error {
	writer := csv.NewWriter(w)

	headers := []string{"Platform", "OSVersion", "Version", "UserAgent"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, a := range table.Agents {
		record := []string{
			string(a.Platform),
			a.OSVersion,
			a.Version.String(),
			a.UserAgent,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
