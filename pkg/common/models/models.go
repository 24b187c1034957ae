package models

import "time"

// LeadEvent is the wire shape the lead bridge publishes and the tracker
// consumes. Source identifies the ingestion channel (webhook provider,
// manual entry); Platform is the board's lead-source tag.
type LeadEvent struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Platform  string                 `json:"platform,omitempty"`
	Source    string                 `json:"source"`
	StartDate time.Time              `json:"start_date"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// AddLeadRequest is the manual-entry shape accepted by the tracker API.
type AddLeadRequest struct {
	Name      string                 `json:"name"`
	Platform  string                 `json:"platform,omitempty"`
	Bucket    string                 `json:"bucket,omitempty"`
	StartDate string                 `json:"start_date,omitempty"`
	BookDate  string                 `json:"book_date,omitempty"`
	CleanDate string                 `json:"clean_date,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

type TransitionRequest struct {
	Target string `json:"target"`
}

type CommitCloseRequest struct {
	BookDate  string `json:"book_date"`
	CleanDate string `json:"clean_date"`
}

type NoteRequest struct {
	Content string `json:"content"`
}
