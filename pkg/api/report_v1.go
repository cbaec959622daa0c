// pkg/api/report_v1.go
package api

// ReportV1 is the stable JSON/JSONL schema for one per-frame report.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type ReportV1 struct {
	SessionID         string `json:"session_id,omitempty"`
	Frame             int    `json:"frame"`
	Timestamp         string `json:"timestamp"` // RFC 3339, UTC, microseconds
	CellsDetected     int    `json:"cells_detected"`
	Microbe           string `json:"microbe"`
	Disease           string `json:"disease"`
	Symptoms          string `json:"symptoms"`
	Risk              string `json:"risk"`
	DNASequence       string `json:"dna_sequence"`
	ReverseComplement string `json:"reverse_complement"`
}

// MicrobeV1 is the schema of one catalog entry as printed by `cellscope catalog`.
type MicrobeV1 struct {
	Name              string `json:"name"`
	Disease           string `json:"disease"`
	Symptoms          string `json:"symptoms"`
	Risk              string `json:"risk"`
	DNASequence       string `json:"dna_sequence,omitempty"`
	ReverseComplement string `json:"reverse_complement,omitempty"`
}
