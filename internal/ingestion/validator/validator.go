// Package validator provides input validation for knowledge imports. It
// enforces the per-upload row limit, required fields on every record, and
// the allowed source-file extensions, returning per-field error details.
package validator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knowbot/knowledge-chatbot/internal/ingestion"
)

const (
	// MaxRecordsDefault is the bulk upload ceiling applied when the service
	// config does not override it.
	MaxRecordsDefault = 50

	maxCategoryLength = 100
)

var allowedExtensions = map[string]bool{
	".csv":  true,
	".json": true,
	".txt":  true,
}

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ValidateImportRequest checks the upload against the row limit, the
// source-file extension whitelist, and per-record field requirements.
func ValidateImportRequest(req *ingestion.ImportRequest, maxRecords int) error {
	if maxRecords <= 0 {
		maxRecords = MaxRecordsDefault
	}
	errs := make(map[string]string)

	if len(req.Records) == 0 {
		errs["records"] = "at least one record is required"
	} else if len(req.Records) > maxRecords {
		errs["records"] = fmt.Sprintf("bulk upload limit exceeded, maximum %d rows allowed per file", maxRecords)
	}

	if req.FileName != "" {
		ext := strings.ToLower(filepath.Ext(req.FileName))
		if !allowedExtensions[ext] {
			errs["file_name"] = "invalid file type, only .csv, .json, or .txt files are allowed"
		}
	}

	for i, rec := range req.Records {
		if i >= maxRecords {
			break
		}
		if strings.TrimSpace(rec.Question) == "" {
			errs[fmt.Sprintf("records[%d].question", i)] = "question is required"
		}
		if strings.TrimSpace(rec.Answer) == "" {
			errs[fmt.Sprintf("records[%d].answer", i)] = "answer is required"
		}
		if len(rec.Category) > maxCategoryLength {
			errs[fmt.Sprintf("records[%d].category", i)] = fmt.Sprintf("category must be at most %d characters", maxCategoryLength)
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
