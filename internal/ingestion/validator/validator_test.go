package validator

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/knowbot/knowledge-chatbot/internal/ingestion"
)

func validRecords(n int) []ingestion.ImportRecord {
	recs := make([]ingestion.ImportRecord, n)
	for i := range recs {
		recs[i] = ingestion.ImportRecord{
			Category: "hours",
			Question: fmt.Sprintf("question %d", i),
			Answer:   fmt.Sprintf("answer %d", i),
		}
	}
	return recs
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	return verr.Fields
}

func TestValidateImportRequest_Valid(t *testing.T) {
	req := &ingestion.ImportRequest{
		FileName: "faq.csv",
		Records:  validRecords(3),
	}
	if err := ValidateImportRequest(req, 50); err != nil {
		t.Errorf("expected valid request, got %v", err)
	}
}

func TestValidateImportRequest_NoFileName(t *testing.T) {
	req := &ingestion.ImportRequest{Records: validRecords(1)}
	if err := ValidateImportRequest(req, 50); err != nil {
		t.Errorf("file name is optional, got %v", err)
	}
}

func TestValidateImportRequest_EmptyRecords(t *testing.T) {
	req := &ingestion.ImportRequest{FileName: "faq.json"}
	fields := fieldErrors(t, ValidateImportRequest(req, 50))
	if fields["records"] == "" {
		t.Errorf("expected a records error, got %v", fields)
	}
}

func TestValidateImportRequest_RowLimit(t *testing.T) {
	req := &ingestion.ImportRequest{Records: validRecords(51)}
	fields := fieldErrors(t, ValidateImportRequest(req, 50))
	if !strings.Contains(fields["records"], "maximum 50 rows") {
		t.Errorf("expected the row-limit message, got %q", fields["records"])
	}

	req = &ingestion.ImportRequest{Records: validRecords(50)}
	if err := ValidateImportRequest(req, 50); err != nil {
		t.Errorf("exactly the limit should pass, got %v", err)
	}
}

func TestValidateImportRequest_ZeroLimitUsesDefault(t *testing.T) {
	req := &ingestion.ImportRequest{Records: validRecords(MaxRecordsDefault)}
	if err := ValidateImportRequest(req, 0); err != nil {
		t.Errorf("default limit should allow %d rows, got %v", MaxRecordsDefault, err)
	}
	req = &ingestion.ImportRequest{Records: validRecords(MaxRecordsDefault + 1)}
	if err := ValidateImportRequest(req, 0); err == nil {
		t.Error("expected the default limit to reject the upload")
	}
}

func TestValidateImportRequest_Extensions(t *testing.T) {
	tests := []struct {
		fileName string
		ok       bool
	}{
		{"faq.csv", true},
		{"faq.json", true},
		{"faq.txt", true},
		{"FAQ.CSV", true},
		{"faq.xlsx", false},
		{"faq.pdf", false},
		{"faq", false},
	}
	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			req := &ingestion.ImportRequest{FileName: tt.fileName, Records: validRecords(1)}
			err := ValidateImportRequest(req, 50)
			if tt.ok && err != nil {
				t.Errorf("expected %q to be accepted, got %v", tt.fileName, err)
			}
			if !tt.ok {
				fields := fieldErrors(t, err)
				if fields["file_name"] == "" {
					t.Errorf("expected a file_name error for %q", tt.fileName)
				}
			}
		})
	}
}

func TestValidateImportRequest_RecordFields(t *testing.T) {
	req := &ingestion.ImportRequest{
		Records: []ingestion.ImportRecord{
			{Category: "hours", Question: "ok", Answer: "ok"},
			{Category: "hours", Question: "   ", Answer: "ok"},
			{Category: "hours", Question: "ok", Answer: ""},
			{Category: strings.Repeat("x", 101), Question: "ok", Answer: "ok"},
		},
	}
	fields := fieldErrors(t, ValidateImportRequest(req, 50))

	if fields["records[1].question"] == "" {
		t.Error("blank question should be rejected")
	}
	if fields["records[2].answer"] == "" {
		t.Error("missing answer should be rejected")
	}
	if fields["records[3].category"] == "" {
		t.Error("over-long category should be rejected")
	}
	if _, ok := fields["records[0].question"]; ok {
		t.Error("valid record should carry no errors")
	}
}
