package models

import "time"

// MailAttachment is a single file attached to an outgoing message.
type MailAttachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MailMessage is one outgoing HTML email.
type MailMessage struct {
	To         string
	Subject    string
	HTMLBody   string
	Attachment *MailAttachment
}

// BookingNotification carries what the background job needs after a booking was accepted.
type BookingNotification struct {
	JobID            string     `json:"jobId"`
	Summary          string     `json:"summary"`
	Start            time.Time  `json:"start"`
	End              time.Time  `json:"end"`
	Client           ClientInfo `json:"client"`
	Comments         string     `json:"comments"`
	EventLink        string     `json:"eventLink"`
	PossibleConflict bool       `json:"possibleConflict,omitempty"`
}

// IntakeNotification carries a submitted form and its rendered document.
type IntakeNotification struct {
	JobID       string     `json:"jobId"`
	Form        IntakeForm `json:"form"`
	PDF         []byte     `json:"pdf"`
	SubmittedAt time.Time  `json:"submittedAt"`
}
