package metadata

import (
	"reflect"
	"strings"
	"testing"
)

const sampleHeader = `5 SCOB 12
IN THE SUPREME COURT OF BANGLADESH
APPELLATE DIVISION

Civil Appeal No. 45 of 2014

Abdul Karim vs The State

Present:
Hon'ble Mr. Justice Rahman Chowdhury
Justice Salma Begum

Judgment on: 15th March, 2015

The appeal arises out of a Writ petition concerning Land and Property
disputes under the Constitution. 5 SCOB 12 was relied upon, as was 3 BLD 7.
`

func TestExtract_Idempotent(t *testing.T) {
	e := NewExtractor()
	first := e.Extract(sampleHeader, "case.pdf")
	second := e.Extract(sampleHeader, "case.pdf")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestExtractCaseName(t *testing.T) {
	e := NewExtractor()
	got := e.ExtractCaseName("Abdul Karim vs The State")
	if !strings.Contains(got, "vs") {
		t.Errorf("expected a party-vs-party case name, got %q", got)
	}
	if got := e.ExtractCaseName("no caption here"); got != "" {
		t.Errorf("expected empty case name, got %q", got)
	}
}

func TestExtractCitations_Deduplicates(t *testing.T) {
	e := NewExtractor()
	// The same citation with and without trailing whitespace must
	// collapse to a single entry.
	text := "See 5 SCOB 12 and again 5 SCOB 12 \nand once more 5 SCOB 12."
	got := e.ExtractCitations(text)
	if len(got) != 1 || got[0] != "5 SCOB 12" {
		t.Errorf("expected exactly [\"5 SCOB 12\"], got %v", got)
	}
}

func TestExtractCitations_MultipleReporters(t *testing.T) {
	e := NewExtractor()
	got := e.ExtractCitations("cited 5 SCOB 12, 3 BLD 7 and 68 DLR 101")
	if len(got) != 3 {
		t.Fatalf("expected 3 citations, got %v", got)
	}
	want := map[string]bool{"5 SCOB 12": true, "3 BLD 7": true, "68 DLR 101": true}
	for _, c := range got {
		if !want[c] {
			t.Errorf("unexpected citation %q", c)
		}
	}
}

func TestExtractCourt(t *testing.T) {
	e := NewExtractor()
	if got := e.ExtractCourt("before the high court division at Dhaka"); got == "" {
		t.Error("expected a case-insensitive court match")
	}
	if got := e.ExtractCourt("nothing judicial here at all"); got != "" {
		t.Errorf("expected no court, got %q", got)
	}
}

func TestExtractJudges(t *testing.T) {
	e := NewExtractor()

	judges := e.ExtractJudges(sampleHeader)
	if len(judges) == 0 {
		t.Fatal("expected judge names")
	}
	for _, j := range judges {
		if len(j) <= 3 {
			t.Errorf("bare initial %q leaked through the length filter", j)
		}
	}

	// Duplicates collapse and the result is capped at five.
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("Justice Abdul Kader\n")
	}
	if got := e.ExtractJudges(b.String()); len(got) != 1 {
		t.Errorf("expected duplicates to collapse to 1, got %d", len(got))
	}

	many := "Justice Alpha Khan\nJustice Bravo Khan\nJustice Charlie Khan\n" +
		"Justice Delta Khan\nJustice Echo Khan\nJustice Foxtrot Khan\n"
	if got := e.ExtractJudges(many); len(got) != 5 {
		t.Errorf("expected cap at 5 judges, got %d", len(got))
	}
}

func TestExtractCaseNumber(t *testing.T) {
	e := NewExtractor()
	if got := e.ExtractCaseNumber("Civil Appeal No. 45 of 2014"); got != "45 of 2014" {
		t.Errorf("expected %q, got %q", "45 of 2014", got)
	}
	if got := e.ExtractCaseNumber("case no 99 of 2011"); got != "99 of 2011" {
		t.Errorf("expected case-insensitive match, got %q", got)
	}
	if got := e.ExtractCaseNumber("no number at all"); got != "" {
		t.Errorf("expected empty case number, got %q", got)
	}
}

func TestExtractJudgmentDate(t *testing.T) {
	e := NewExtractor()
	if got := e.ExtractJudgmentDate("Judgment on: 15th March, 2015"); got == "" {
		t.Error("expected a month-name date near the Judgment keyword")
	}
	if got := e.ExtractJudgmentDate("filed 12/03/2015 before the court"); got != "12/03/2015" {
		t.Errorf("expected numeric date, got %q", got)
	}
}

func TestExtractSubjectMatter(t *testing.T) {
	e := NewExtractor()

	got := e.ExtractSubjectMatter("a writ under the constitution about land, tax, service and banking law plus contract claims")
	if len(got) != 5 {
		t.Fatalf("expected cap at 5 topics, got %v", got)
	}
	// Results follow vocabulary order, not document order.
	if got[0] != "Constitution" {
		t.Errorf("expected vocabulary order with Constitution first, got %v", got)
	}

	if got := e.ExtractSubjectMatter("entirely unrelated prose"); len(got) != 0 {
		t.Errorf("expected no topics, got %v", got)
	}
}

func TestExtract_WindowBound(t *testing.T) {
	// A citation far past the prefix window must not be found.
	text := strings.Repeat("x", 4000) + " 5 SCOB 12"
	e := NewExtractor()
	if got := e.ExtractCitations(text); len(got) != 0 {
		t.Errorf("citation outside the 3000-char window leaked: %v", got)
	}
}

func TestFormatForDisplay(t *testing.T) {
	e := NewExtractor()
	md := e.Extract(sampleHeader, "case.pdf")
	line := FormatForDisplay(md)
	if !strings.Contains(line, "Case No: 45 of 2014") {
		t.Errorf("display line missing case number: %q", line)
	}

	empty := e.Extract("", "empty.pdf")
	if got := FormatForDisplay(empty); got != "No metadata extracted" {
		t.Errorf("expected placeholder for empty metadata, got %q", got)
	}
}
