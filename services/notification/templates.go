package notification

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"

	"chelmassage/models"
)

var (
	clientConfirmationTmpl = template.Must(template.New("client").Parse(`
<p>Hi {{.FirstName}},</p>
<p>Thank you for booking your appointment! We look forward to seeing you on <strong>{{.Date}}</strong> at <strong>{{.Time}}</strong>.</p>
<p>As a next step, if you have not already, please complete our secure client intake form by clicking the link below:</p>
<p><a href="{{.IntakeURL}}" style="padding: 10px 15px; background-color: #007bff; color: white; text-decoration: none; border-radius: 5px;">Complete Intake Form</a></p>
<p>Thank you,<br>{{.BusinessName}}</p>
`))

	operatorBookingTmpl = template.Must(template.New("operator-booking").Parse(`
<p><strong>You have a new booking!</strong></p>
{{if .PossibleConflict}}<p style="color: #b00020;"><strong>Warning:</strong> another event overlaps this time. Please check the calendar for a possible double booking.</p>{{end}}
<p><strong>Client:</strong> {{.ClientName}}</p>
<p><strong>Service:</strong> {{.Service}}</p>
<p><strong>When:</strong> {{.When}}</p>
<p><strong>Client Email:</strong> {{.Email}}</p>
<p><strong>Client Phone:</strong> {{.Phone}}</p>
<p><strong>Comments:</strong> {{.Comments}}</p>
{{if .EventLink}}<p>The event has been added to your <a href="{{.EventLink}}">Google Calendar</a>.</p>{{else}}<p>The event has been added to your Google Calendar.</p>{{end}}
`))

	operatorIntakeTmpl = template.Must(template.New("operator-intake").Parse(`
<p>A new client intake form has been submitted.</p>
<p><strong>Client:</strong> {{.ClientName}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Original Booking:</strong> {{.Booking}}</p>
<p>The completed form is attached as a PDF.</p>
`))
)

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// IntakeURL builds the prefilled intake form link sent to a newly booked client.
func IntakeURL(baseURL string, client models.ClientInfo, comments string) string {
	q := url.Values{}
	q.Set("firstName", client.FirstName)
	q.Set("lastName", client.LastName)
	q.Set("email", client.Email)
	q.Set("phone", client.Phone)
	q.Set("comments", comments)
	return strings.TrimRight(baseURL, "/") + "/intake.html?" + q.Encode()
}

func (s *DefaultNotificationService) clientConfirmation(n models.BookingNotification) (models.MailMessage, error) {
	local := n.Start.In(s.Location)
	firstName := n.Client.FirstName
	if firstName == "" {
		firstName = "Valued Client"
	}
	body, err := render(clientConfirmationTmpl, struct {
		FirstName, Date, Time, IntakeURL, BusinessName string
	}{
		FirstName:    firstName,
		Date:         local.Format("January 02, 2006"),
		Time:         local.Format("03:04 PM"),
		IntakeURL:    IntakeURL(s.BaseURL, n.Client, n.Comments),
		BusinessName: s.BusinessName,
	})
	if err != nil {
		return models.MailMessage{}, err
	}
	return models.MailMessage{
		To:       n.Client.Email,
		Subject:  "Your Massage Appointment is Confirmed!",
		HTMLBody: body,
	}, nil
}

func (s *DefaultNotificationService) operatorBooking(n models.BookingNotification) (models.MailMessage, error) {
	body, err := render(operatorBookingTmpl, struct {
		ClientName, Service, When, Email, Phone, Comments, EventLink string
		PossibleConflict                                             bool
	}{
		ClientName:       n.Client.FullName(),
		Service:          n.Summary,
		When:             n.Start.In(s.Location).Format("Monday, January 02, 2006 at 03:04 PM"),
		Email:            n.Client.Email,
		Phone:            n.Client.Phone,
		Comments:         n.Comments,
		EventLink:        n.EventLink,
		PossibleConflict: n.PossibleConflict,
	})
	if err != nil {
		return models.MailMessage{}, err
	}
	subject := "New Booking: " + models.SingleLine(n.Summary)
	if n.PossibleConflict {
		subject = "[Check calendar] " + subject
	}
	return models.MailMessage{To: s.AdminEmail, Subject: subject, HTMLBody: body}, nil
}

func (s *DefaultNotificationService) operatorIntake(n models.IntakeNotification) (models.MailMessage, error) {
	email := n.Form.Email
	if email == "" {
		email = "N/A"
	}
	body, err := render(operatorIntakeTmpl, struct {
		ClientName, Email, Booking string
	}{
		ClientName: n.Form.ClientName(),
		Email:      email,
		Booking:    n.Form.Booking(),
	})
	if err != nil {
		return models.MailMessage{}, err
	}
	msg := models.MailMessage{
		To:       s.AdminEmail,
		Subject:  "New Intake Form Submitted by " + n.Form.ClientName(),
		HTMLBody: body,
	}
	if len(n.PDF) > 0 {
		msg.Attachment = &models.MailAttachment{
			Filename:    n.Form.AttachmentName(),
			ContentType: "application/pdf",
			Data:        n.PDF,
		}
	}
	return msg, nil
}
