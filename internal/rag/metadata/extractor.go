package metadata

import (
	"fmt"
	"regexp"
	"strings"

	"lexrag/internal/rag/schema"
)

// Prefix windows for extraction. Header and caption information in legal
// case documents conventionally sits near the start, so extraction never
// looks further than this.
const (
	headWindow = 2000
	bodyWindow = 3000
)

// rule pairs a pattern with the transform applied to its submatches.
// Rules are evaluated in order with first-match-wins semantics.
type rule struct {
	re        *regexp.Regexp
	transform func(m []string) string
}

// wholeMatch returns the full matched span.
func wholeMatch(m []string) string { return strings.TrimSpace(m[0]) }

// firstGroup returns the first capture group.
func firstGroup(m []string) string { return strings.TrimSpace(m[1]) }

var caseNameRules = []rule{
	{
		re: regexp.MustCompile(`([A-Z][A-Za-z\s&]+)\s+[Vv][Ss]?\.?\s+([A-Z][A-Za-z\s&]+)`),
		transform: func(m []string) string {
			return fmt.Sprintf("%s vs %s", strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
		},
	},
	{
		re:        regexp.MustCompile(`([A-Z][A-Za-z\s]+)\s+[Aa][Nn][Dd]\s+[Oo][Tt][Hh][Ee][Rr][Ss]`),
		transform: wholeMatch,
	},
}

// Reporter-specific citation patterns: volume-reporter-page triples for
// the SCOB, BLD and DLR law reports.
var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s+SCOB\s+(\d+)`),
	regexp.MustCompile(`(\d+)\s+BLD\s+(\d+)`),
	regexp.MustCompile(`(\d+)\s+DLR\s+(\d+)`),
}

var courtRules = []rule{
	{
		re:        regexp.MustCompile(`(?i)(Supreme Court|High Court Division|Appellate Division)`),
		transform: wholeMatch,
	},
	{
		re:        regexp.MustCompile(`(?i)(Civil|Criminal|Constitutional|Commercial)\s+(Appeal|Petition|Revision)`),
		transform: wholeMatch,
	},
}

var judgePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:Justice|J\.)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
	regexp.MustCompile(`(?:Hon'?ble|Honourable)\s+(?:Mr\.|Ms\.)?\s*Justice\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
}

var caseNumberRules = []rule{
	{
		re:        regexp.MustCompile(`(?i)(?:Civil|Criminal|Constitutional)\s+(?:Appeal|Petition|Revision)\s+No\.?\s*(\d+\s+of\s+\d+)`),
		transform: firstGroup,
	},
	{
		re:        regexp.MustCompile(`(?i)Case\s+No\.?\s*(\d+\s+of\s+\d+)`),
		transform: firstGroup,
	},
	{
		re:        regexp.MustCompile(`(?i)Appeal\s+No\.?\s*(\d+\s+of\s+\d+)`),
		transform: firstGroup,
	},
}

var judgmentDateRules = []rule{
	{
		re:        regexp.MustCompile(`(?i)(?:Judgment|Judgement|Decided|Date).*?(\d{1,2}(?:st|nd|rd|th)?\s+(?:January|February|March|April|May|June|July|August|September|October|November|December),?\s+\d{4})`),
		transform: firstGroup,
	},
	{
		re:        regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{4})`),
		transform: firstGroup,
	},
}

// legalTopics is the fixed subject-matter vocabulary. Matching is a
// case-insensitive substring test, and results keep vocabulary order.
var legalTopics = []string{
	"Constitution", "Contract", "Property", "Criminal", "Civil",
	"Service", "Land", "Tax", "Administrative", "Writ",
	"Fundamental Rights", "Tort", "Family", "Succession",
	"Evidence", "Procedure", "Arbitration", "Company",
	"Banking", "Insurance", "Labour", "Employment",
}

const (
	maxJudges        = 5
	maxSubjectMatter = 5
)

// Extractor derives structured case metadata from unstructured legal text
// using ordered, best-effort pattern rules. It holds no state between
// calls and is safe for concurrent use. No extractor ever fails: a field
// with no match is simply left at its zero value.
type Extractor struct{}

// NewExtractor creates a metadata Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract runs every field extractor over the document text.
func (e *Extractor) Extract(text, filename string) schema.ExtractedMetadata {
	return schema.ExtractedMetadata{
		CaseName:      e.ExtractCaseName(text),
		CaseNumber:    e.ExtractCaseNumber(text),
		Court:         e.ExtractCourt(text),
		Judges:        e.ExtractJudges(text),
		JudgmentDate:  e.ExtractJudgmentDate(text),
		Citations:     e.ExtractCitations(text),
		SubjectMatter: e.ExtractSubjectMatter(text),
	}
}

// ExtractCaseName finds the parties involved, normalized to
// "<party> vs <party>" when both sides are captured.
func (e *Extractor) ExtractCaseName(text string) string {
	return firstMatch(caseNameRules, prefix(text, headWindow))
}

// ExtractCitations collects every law-report citation and deduplicates
// the result. Order follows first appearance per pattern, not the
// document; callers must not rely on any particular ordering.
func (e *Extractor) ExtractCitations(text string) []string {
	window := prefix(text, bodyWindow)
	seen := make(map[string]bool)
	var citations []string
	for _, re := range citationPatterns {
		for _, m := range re.FindAllString(window, -1) {
			if !seen[m] {
				seen[m] = true
				citations = append(citations, m)
			}
		}
	}
	return citations
}

// ExtractCourt finds the court or case-category designation.
func (e *Extractor) ExtractCourt(text string) string {
	return firstMatch(courtRules, prefix(text, headWindow))
}

// ExtractJudges collects honorific-prefixed judge names. Matches of three
// characters or fewer are discarded as bare initials; the result is
// deduplicated and capped at five entries.
func (e *Extractor) ExtractJudges(text string) []string {
	window := prefix(text, bodyWindow)
	seen := make(map[string]bool)
	var judges []string
	for _, re := range judgePatterns {
		for _, m := range re.FindAllStringSubmatch(window, -1) {
			name := strings.TrimSpace(m[1])
			if len(name) <= 3 || seen[name] {
				continue
			}
			seen[name] = true
			judges = append(judges, name)
			if len(judges) == maxJudges {
				return judges
			}
		}
	}
	return judges
}

// ExtractCaseNumber finds the case or appeal number, returning the
// "<n> of <year>" portion.
func (e *Extractor) ExtractCaseNumber(text string) string {
	return firstMatch(caseNumberRules, prefix(text, headWindow))
}

// ExtractJudgmentDate finds the judgment date, either a month-name date
// near a Judgment/Decided/Date keyword or a numeric D/M/Y date.
func (e *Extractor) ExtractJudgmentDate(text string) string {
	return firstMatch(judgmentDateRules, prefix(text, headWindow))
}

// ExtractSubjectMatter reports which topics of the fixed legal vocabulary
// occur in the document head, in vocabulary order, capped at five.
func (e *Extractor) ExtractSubjectMatter(text string) []string {
	window := strings.ToLower(prefix(text, bodyWindow))
	var topics []string
	for _, topic := range legalTopics {
		if strings.Contains(window, strings.ToLower(topic)) {
			topics = append(topics, topic)
			if len(topics) == maxSubjectMatter {
				break
			}
		}
	}
	return topics
}

// FormatForDisplay renders extracted metadata as one readable line.
func FormatForDisplay(md schema.ExtractedMetadata) string {
	var parts []string
	if md.CaseName != "" {
		parts = append(parts, "Case: "+md.CaseName)
	}
	if md.CaseNumber != "" {
		parts = append(parts, "Case No: "+md.CaseNumber)
	}
	if md.Court != "" {
		parts = append(parts, "Court: "+md.Court)
	}
	if len(md.Judges) > 0 {
		parts = append(parts, "Judges: "+strings.Join(md.Judges, ", "))
	}
	if md.JudgmentDate != "" {
		parts = append(parts, "Date: "+md.JudgmentDate)
	}
	if len(md.Citations) > 0 {
		parts = append(parts, "Citations: "+strings.Join(md.Citations, ", "))
	}
	if len(md.SubjectMatter) > 0 {
		parts = append(parts, "Topics: "+strings.Join(md.SubjectMatter, ", "))
	}
	if len(parts) == 0 {
		return "No metadata extracted"
	}
	return strings.Join(parts, " | ")
}

// firstMatch evaluates the rules in order and returns the first
// transformed match, or "" when nothing matches.
func firstMatch(rules []rule, window string) string {
	for _, r := range rules {
		if m := r.re.FindStringSubmatch(window); m != nil {
			return r.transform(m)
		}
	}
	return ""
}

// prefix bounds text to its first n bytes.
func prefix(text string, n int) string {
	if len(text) > n {
		return text[:n]
	}
	return text
}
