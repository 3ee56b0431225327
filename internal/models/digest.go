package models

import "time"

// EmailResponse mirrors the delivery provider's answer. Exactly one of the
// fields is expected to be set: ID on success, Error on failure, Message when
// delivery was skipped.
type EmailResponse struct {
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Delivered reports whether the provider accepted the message.
func (r EmailResponse) Delivered() bool {
	return r.ID != ""
}

// Skipped reports whether delivery was never attempted.
func (r EmailResponse) Skipped() bool {
	return r.ID == "" && r.Error == ""
}

// ArchivedDigest is a persisted pipeline run: the result plus the request
// metadata needed to list and replay it later.
type ArchivedDigest struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Style     StyleProfile `json:"style"`
	Result    DigestResult `json:"result"`
	CreatedAt time.Time    `json:"created_at"`
	FilePath  string       `json:"-"`
}

// DigestResult is the output of one pipeline run. It is immutable once
// returned; Success is false only when no usable content was produced.
type DigestResult struct {
	Success       bool                `json:"success"`
	Articles      []SummarizedArticle `json:"articles"`
	DigestContent string              `json:"digest_content,omitempty"`
	EmailResponse *EmailResponse      `json:"email_response,omitempty"`
	Error         string              `json:"error,omitempty"`
	ProcessedAt   time.Time           `json:"processed_at"`
}
