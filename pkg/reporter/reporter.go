// Package reporter writes country configurations and coverage reports.
package reporter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/amosWeiskopf/schemasmith/internal/models"
)

// Supported report formats
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Reporter handles output in the supported formats
type Reporter struct {
	indent string
}

// New creates a new Reporter instance
func New() *Reporter {
	return &Reporter{indent: "  "}
}

// WriteConfigs writes configs as a JSON array, or as an object keyed by
// country code when keyed is set. Keyed output keeps the input order.
func (r *Reporter) WriteConfigs(w io.Writer, configs []models.CountryOrganizationConfig, keyed bool) error {
	if configs == nil {
		configs = []models.CountryOrganizationConfig{}
	}
	if !keyed {
		return r.writeJSON(w, configs)
	}

	var buf bytes.Buffer
	buf.WriteString("{")
	for i, c := range configs {
		if i > 0 {
			buf.WriteString(",")
		}
		key, err := json.Marshal(c.CountryCode)
		if err != nil {
			return fmt.Errorf("failed to marshal key: %w", err)
		}
		val, err := json.MarshalIndent(c, r.indent, r.indent)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", c.CountryCode, err)
		}
		fmt.Fprintf(&buf, "\n%s%s: %s", r.indent, key, val)
	}
	if len(configs) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// ReadConfigs reads configs written by WriteConfigs in either layout
func (r *Reporter) ReadConfigs(rd io.Reader) ([]models.CountryOrganizationConfig, error) {
	br := bufio.NewReader(rd)
	first, err := peekNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read configs: %w", err)
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var configs []models.CountryOrganizationConfig
		if err := dec.Decode(&configs); err != nil {
			return nil, fmt.Errorf("failed to decode configs: %w", err)
		}
		return configs, nil
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to decode configs: %w", err)
	}
	var configs []models.CountryOrganizationConfig
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to decode configs: %w", err)
		}
		var c models.CountryOrganizationConfig
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode config %v: %w", key, err)
		}
		if c.CountryCode == "" {
			c.CountryCode, _ = key.(string)
		}
		configs = append(configs, c)
	}
	return configs, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '[', '{':
			return b, br.UnreadByte()
		default:
			return 0, fmt.Errorf("unexpected %q, want a JSON array or object", b)
		}
	}
}

// WriteReport writes a coverage report in the specified format
func (r *Reporter) WriteReport(w io.Writer, report *models.CoverageReport, format string) error {
	switch format {
	case FormatJSON:
		return r.writeJSON(w, report)
	case FormatMarkdown:
		_, err := io.WriteString(w, r.Markdown(report))
		return err
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func (r *Reporter) writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", r.indent)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	return nil
}

// Markdown renders the coverage report
func (r *Reporter) Markdown(report *models.CoverageReport) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Organization Profile Coverage\n\n")
	fmt.Fprintf(&buf, "*Generated on %s*\n\n", report.GeneratedAt.Format("January 2, 2006"))

	fmt.Fprintf(&buf, "## Summary\n\n")
	fmt.Fprintf(&buf, "**Overall Grade:** %s (%.0f/100)\n\n", report.Summary.OverallGrade, report.Summary.OverallScore)
	fmt.Fprintf(&buf, "- **Countries:** %d\n", report.Summary.Countries)
	fmt.Fprintf(&buf, "- **Pages:** %d\n", report.Summary.Pages)
	if len(report.Summary.Complete) > 0 {
		fmt.Fprintf(&buf, "- **Complete:** %s\n", strings.Join(report.Summary.Complete, ", "))
	}
	if len(report.Summary.Incomplete) > 0 {
		fmt.Fprintf(&buf, "- **Incomplete:** %s\n", strings.Join(report.Summary.Incomplete, ", "))
	}
	fmt.Fprintf(&buf, "\n")

	if len(report.Countries) > 0 {
		fmt.Fprintf(&buf, "## Countries\n\n")
		fmt.Fprintf(&buf, "| Country | Domain | Pages | Locales | Contact page | Telephone | Email | Address | Social | Score |\n")
		fmt.Fprintf(&buf, "|---------|--------|-------|---------|--------------|-----------|-------|---------|--------|-------|\n")
		for _, c := range report.Countries {
			fmt.Fprintf(&buf, "| %s | %s | %d | %d | %s | %s | %s | %s | %d | %.0f |\n",
				c.CountryCode, c.BaseDomain, c.Pages, c.Locales,
				mark(c.HasContactPage), mark(c.HasTelephone), mark(c.HasEmail), mark(c.HasAddress),
				c.SocialPlatforms, c.Score)
		}
		fmt.Fprintf(&buf, "\n")
	}

	if len(report.KeyFindings) > 0 {
		fmt.Fprintf(&buf, "## Key Findings\n\n")
		for _, finding := range report.KeyFindings {
			fmt.Fprintf(&buf, "### %s\n", finding.Type)
			fmt.Fprintf(&buf, "- **Category:** %s\n", finding.Category)
			fmt.Fprintf(&buf, "- **Severity:** %s\n", finding.Severity)
			fmt.Fprintf(&buf, "- **Description:** %s\n", finding.Description)
			if finding.Details != "" {
				fmt.Fprintf(&buf, "- **Details:** %s\n", finding.Details)
			}
			fmt.Fprintf(&buf, "\n")
		}
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintf(&buf, "## Recommendations\n\n")
		for i, rec := range report.Recommendations {
			fmt.Fprintf(&buf, "### %d. %s\n", i+1, rec.Action)
			fmt.Fprintf(&buf, "- **Priority:** %s\n", rec.Priority)
			fmt.Fprintf(&buf, "- **Category:** %s\n", rec.Category)
			fmt.Fprintf(&buf, "- **Description:** %s\n", rec.Description)
			fmt.Fprintf(&buf, "\n")
		}
	}

	return buf.String()
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
