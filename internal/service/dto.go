package service

import "encoding/json"

// MailRequest is the inbound "send one mail" shape shared by the REST
// boundary and the queue boundary. Body is a JSON-encoded string with the
// template's variable values.
type MailRequest struct {
	Template string `json:"template" binding:"required"`
	To       string `json:"to" binding:"required,email"`
	Subject  string `json:"subject" binding:"required"`
	Body     string `json:"body" binding:"required"`
}

// FeedMailRequest is the specialized feed-ingestion shape; it carries its
// own sender address which overrides the configured one.
type FeedMailRequest struct {
	To       string `json:"to" binding:"required,email"`
	From     string `json:"from" binding:"required,email"`
	Template string `json:"template" binding:"required"`
	Subject  string `json:"subject" binding:"required"`
	Body     string `json:"body" binding:"required"`
}

// EventDTO is the generic envelope received on the mail-send queue. The
// mail request itself sits under eventBody.datos.
type EventDTO struct {
	ID        string          `json:"id"`
	EventName string          `json:"eventName"`
	EventBody json.RawMessage `json:"eventBody"`
}

type eventBody struct {
	Datos MailRequest `json:"datos"`
}

// ValidateTemplateRequest asks for a pre-flight completeness check of one
// stored template against its default field schema.
type ValidateTemplateRequest struct {
	Template string `json:"template" binding:"required"`
}
