package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DocumentAnalysis is the AI reply for an uploaded document. Every field is
// optional because the provider may ignore parts of the schema.
type DocumentAnalysis struct {
	DocumentType     *string         `json:"document_type"`
	Category         *string         `json:"category"`
	ExtractedFields  json.RawMessage `json:"extracted_fields"`
	ComplianceStatus *string         `json:"compliance_status"`
	ExpiryDate       *string         `json:"expiry_date"`
	AINotes          *string         `json:"ai_notes"`
}

// ParseDocumentAnalysis decodes a structured reply. Anything that is not a
// JSON object is unusable. Inside an object each field is read on its own, so
// a field of the wrong type is treated as missing instead of voiding the reply.
func ParseDocumentAnalysis(raw []byte) (DocumentAnalysis, error) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "{") {
		return DocumentAnalysis{}, WrapError(ErrAnalysisFailed, "parse analysis", fmt.Errorf("reply is not a json object"))
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return DocumentAnalysis{}, WrapError(ErrAnalysisFailed, "parse analysis", err)
	}
	return DocumentAnalysis{
		DocumentType:     stringField(fields["document_type"]),
		Category:         stringField(fields["category"]),
		ExtractedFields:  fields["extracted_fields"],
		ComplianceStatus: stringField(fields["compliance_status"]),
		ExpiryDate:       stringField(fields["expiry_date"]),
		AINotes:          stringField(fields["ai_notes"]),
	}, nil
}

// stringField returns nil for absent, null or non-string values.
func stringField(raw json.RawMessage) *string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return nil
	}
	return &s
}

// ResolvedAnalysis holds analysis values after default filling; none of them is optional.
type ResolvedAnalysis struct {
	DocumentType     string
	Category         string
	ExtractedFields  string
	ComplianceStatus ComplianceStatus
	ExpiryDate       string
	AINotes          string
}

// Resolve fills every missing or blank field with its documented default.
func (a DocumentAnalysis) Resolve() ResolvedAnalysis {
	return ResolvedAnalysis{
		DocumentType:     orDefault(a.DocumentType, UnknownDocumentType),
		Category:         orDefault(a.Category, Uncategorized),
		ExtractedFields:  normalizeFields(a.ExtractedFields),
		ComplianceStatus: ComplianceStatus(orDefault(a.ComplianceStatus, string(ComplianceValid))),
		ExpiryDate:       orDefault(a.ExpiryDate, ""),
		AINotes:          orDefault(a.AINotes, ""),
	}
}

func orDefault(v *string, fallback string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}
	return strings.TrimSpace(*v)
}

// normalizeFields keeps only an object payload and re-serializes it so the
// stored text is always valid JSON.
func normalizeFields(raw json.RawMessage) string {
	var fields map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &fields) != nil || fields == nil {
		return "{}"
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// ResponseSchema is the JSON schema subset handed to AI providers for structured output.
type ResponseSchema struct {
	Type                 string                     `json:"type"`
	Properties           map[string]*ResponseSchema `json:"properties,omitempty"`
	AdditionalProperties *bool                      `json:"additionalProperties,omitempty"`
}

// DocumentAnalysisSchema constrains the ingestion reply.
func DocumentAnalysisSchema() *ResponseSchema {
	open := true
	str := func() *ResponseSchema { return &ResponseSchema{Type: "string"} }
	return &ResponseSchema{
		Type: "object",
		Properties: map[string]*ResponseSchema{
			"document_type":     str(),
			"category":          str(),
			"extracted_fields":  {Type: "object", AdditionalProperties: &open},
			"compliance_status": str(),
			"expiry_date":       str(),
			"ai_notes":          str(),
		},
	}
}

// AIRequest is a single inference call.
type AIRequest struct {
	Prompt         string
	FileURLs       []string
	ResponseSchema *ResponseSchema
}
