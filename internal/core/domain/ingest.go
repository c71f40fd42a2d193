package domain

// FileOutcome is the terminal state of one file in an ingestion batch.
type FileOutcome string

const (
	OutcomeReady        FileOutcome = "ready"
	OutcomeNeedsReview  FileOutcome = "needs_review"
	OutcomeUploadFailed FileOutcome = "upload_failed"
	OutcomeFailed       FileOutcome = "failed"
	// OutcomeSkipped marks files never started because the batch aborted.
	OutcomeSkipped FileOutcome = "skipped"
)

type FileResult struct {
	Name       string      `json:"name"`
	Outcome    FileOutcome `json:"outcome"`
	DocumentID string      `json:"document_id,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// BatchResult is the aggregate signal of one ingestion batch.
type BatchResult struct {
	Documents []Document   `json:"documents"`
	Files     []FileResult `json:"files"`
	OK        bool         `json:"ok"`
}

func (r BatchResult) Count(outcome FileOutcome) int {
	n := 0
	for _, f := range r.Files {
		if f.Outcome == outcome {
			n++
		}
	}
	return n
}

// UploadFailurePolicy decides what happens to the rest of a batch after an upload failure.
type UploadFailurePolicy string

const (
	UploadFailureAbort   UploadFailurePolicy = "abort"
	UploadFailureIsolate UploadFailurePolicy = "isolate"
)

func ParseUploadFailurePolicy(v string) UploadFailurePolicy {
	if UploadFailurePolicy(v) == UploadFailureIsolate {
		return UploadFailureIsolate
	}
	return UploadFailureAbort
}
