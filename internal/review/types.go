package review

// Severity represents the severity level of a finding.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SeverityWeight returns a numeric weight for scoring (higher = more severe).
func SeverityWeight(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Category represents the type of finding.
type Category string

const (
	CategoryBug         Category = "bug"
	CategorySecurity    Category = "security"
	CategoryPerformance Category = "performance"
	CategoryStyle       Category = "style"
	CategoryDocs        Category = "docs"
	CategoryTest        Category = "test"
)

// CategoryWeight returns the tie-break weight within a severity band.
// Security and bugs outrank performance and test gaps, which outrank
// docs and style.
func CategoryWeight(c Category) int {
	switch c {
	case CategorySecurity:
		return 4
	case CategoryBug:
		return 3
	case CategoryPerformance, CategoryTest:
		return 2
	case CategoryDocs, CategoryStyle:
		return 1
	default:
		return 1
	}
}

var validCategories = map[Category]bool{
	CategoryBug:         true,
	CategorySecurity:    true,
	CategoryPerformance: true,
	CategoryStyle:       true,
	CategoryDocs:        true,
	CategoryTest:        true,
}

var validSeverities = map[Severity]bool{
	SeverityLow:    true,
	SeverityMedium: true,
	SeverityHigh:   true,
}

// Finding is a single review observation. Findings are value objects; two
// findings with identical fields are the same finding.
type Finding struct {
	Path       string   `json:"path"`
	StartLine  int      `json:"startLine"`
	EndLine    int      `json:"endLine"`
	Category   Category `json:"category"`
	Severity   Severity `json:"severity"`
	Title      string   `json:"title"`
	Rationale  string   `json:"rationale"`
	Suggestion string   `json:"suggestion,omitempty"`
	References []string `json:"references,omitempty"`
}

// Normalize fills missing or invalid fields with defaults so that every
// finding reaching the aggregator carries a category, severity, and title.
func (f *Finding) Normalize() {
	if !validCategories[f.Category] {
		f.Category = CategoryStyle
	}
	if !validSeverities[f.Severity] {
		f.Severity = SeverityLow
	}
	if f.Title == "" {
		f.Title = "Review finding"
	}
	if f.StartLine < 1 {
		f.StartLine = 1
	}
	if f.EndLine < f.StartLine {
		f.EndLine = f.StartLine
	}
}

// Score is the total-order rank of a finding: severity dominates, category
// breaks ties within a severity band.
func (f Finding) Score() int {
	return SeverityWeight(f.Severity)*10 + CategoryWeight(f.Category)
}
