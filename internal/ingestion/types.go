// Package ingestion defines the request/response types and Kafka event
// schemas used by the knowledge bulk-import pipeline.
package ingestion

import "time"

// ImportRecord is one uploaded (category, question, answer) row.
type ImportRecord struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ImportRequest is the JSON body accepted by the import HTTP endpoint.
// FileName, when present, names the uploaded source file for traceability.
type ImportRequest struct {
	FileName string         `json:"file_name"`
	Records  []ImportRecord `json:"records"`
}

// ImportResponse is returned to the caller after an upload is accepted.
type ImportResponse struct {
	Accepted int    `json:"accepted"`
	Status   string `json:"status"`
}

// ImportEvent is the Kafka message payload produced per uploaded record.
type ImportEvent struct {
	Category   string    `json:"category"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	SourceFile string    `json:"source_file,omitempty"`
	ImportedAt time.Time `json:"imported_at"`
}
