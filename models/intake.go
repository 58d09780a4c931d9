package models

import (
	"encoding/json"
	"strings"
)

// IntakeForm is the POST /api/submit-intake payload. Unknown fields are ignored.
type IntakeForm struct {
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	DOB          string     `json:"dob"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Address      string     `json:"address"`
	Reason       string     `json:"reason"`
	Conditions   StringList `json:"conditions"`
	Allergies    string     `json:"allergies"`
	DrawingFront string     `json:"drawingFront"` // data URL, base64 PNG
	DrawingBack  string     `json:"drawingBack"`  // data URL, base64 PNG
	BookingDate  string     `json:"bookingDate"`
	BookingTime  string     `json:"bookingTime"`
}

// ClientName is "First Last" with "N/A" standing in for missing parts.
func (f IntakeForm) ClientName() string {
	return orNA(SingleLine(f.FirstName)) + " " + orNA(SingleLine(f.LastName))
}

// AttachmentName is the file name the rendered form is mailed under.
func (f IntakeForm) AttachmentName() string {
	return "IntakeForm_" + SingleLine(f.LastName) + "_" + SingleLine(f.FirstName) + ".pdf"
}

// Booking describes the original appointment the form refers to.
func (f IntakeForm) Booking() string {
	return orNA(f.BookingDate) + " at " + orNA(f.BookingTime)
}

// SingleLine collapses runs of whitespace, line breaks included, to one space.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// StringList accepts either a JSON string or an array of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		if single == "" {
			*l = nil
		} else {
			*l = StringList{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// String joins the values with ", ".
func (l StringList) String() string {
	return strings.Join(l, ", ")
}
