// Package model defines the shared data model of the migration engine:
// findings reported by rules, source locations, fix outcomes, and scan
// summaries. Every host surface (CLI, HTTP API, MCP) speaks these types,
// JSON-encoded wherever they cross a process boundary.
package model

// Severity classifies a finding. Every shipped rule reports error
// severity; the scale exists so hosts can filter and render uniformly.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Span is a half-open byte range [Start, End) in the source text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Overlaps reports whether s and other share at least one byte.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Location anchors a finding in a document: the byte span of the
// reported token plus 1-based line and column for display.
type Location struct {
	File   string `json:"file,omitempty"`
	Span   Span   `json:"span"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Finding is one rule match: which rule fired, where, and whether the
// rule can rewrite the construct it matched.
type Finding struct {
	RuleID   string   `json:"rule_id"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Location Location `json:"location"`
	Fixable  bool     `json:"fixable"`
}

// RuleInfo describes a rule for discovery surfaces (the rules command,
// the MCP list_rules tool, GET /api/v1/rules).
type RuleInfo struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	CanFix      bool     `json:"can_fix"`
}

// FixResult is the outcome of a fix request. Changed false means the
// engine declined: nothing matched at the location, the construct was
// not reconstructable, or the snapshot went stale. Output always holds
// a complete document: the rewritten text when Changed, the unmodified
// input otherwise. After a fix-all run, Remaining lists the findings
// still present in Output, the ones needing manual migration.
type FixResult struct {
	Changed   bool      `json:"changed"`
	Output    string    `json:"output"`
	Applied   []string  `json:"applied,omitempty"` // rule IDs in application order
	Remaining []Finding `json:"remaining,omitempty"`
}

// FileReport collects the findings of one scanned file.
type FileReport struct {
	Path     string    `json:"path"`
	Findings []Finding `json:"findings"`
}
