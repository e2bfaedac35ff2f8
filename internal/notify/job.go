package notify

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"complaintportal/internal/complaint"
)

// Queue message types handled by the mail worker.
const (
	TypeComplaintRegistered = "complaint_registered"
	TypeFeedbackReceived    = "feedback_received"
)

// Job is the delivery payload handed to the mail worker.
type Job struct {
	Recipient      string   `json:"recipient"`
	Subject        string   `json:"subject"`
	HTMLBody       string   `json:"htmlBody"`
	TextBody       string   `json:"textBody"`
	AttachmentKeys []string `json:"attachmentKeys,omitempty"`
	Category       string   `json:"category"`
	ComplaintID    string   `json:"complaintId"`
}

// EncodeJob wraps a job into a queue message of the given type.
func EncodeJob(msgType string, job Job) (Message, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Body: body}, nil
}

// DecodeJob unwraps a queue message.
func DecodeJob(msg Message) (Job, error) {
	var job Job
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		return Job{}, fmt.Errorf("decode %s job: %w", msg.Type, err)
	}
	return job, nil
}

// BuildRegistrationJob renders the confirmation email for a freshly
// registered complaint.
func BuildRegistrationJob(c complaint.Complaint) Job {
	details := detailRows(c)

	var text strings.Builder
	fmt.Fprintf(&text, "Dear %s,\n\n", c.StudentName)
	fmt.Fprintf(&text, "Your %s complaint has been successfully submitted.\nComplaint ID: #%s\n\n", c.Category, c.ID)
	text.WriteString("Complaint Details:\n")
	for _, row := range details {
		fmt.Fprintf(&text, "%s: %s\n", row[0], row[1])
	}
	fmt.Fprintf(&text, "\nDescription:\n%s\n", c.Description)
	text.WriteString("\nWhat's Next?\n")
	text.WriteString("- Your complaint will be reviewed by the concerned department\n")
	text.WriteString("- You will receive updates on the status of your complaint\n")
	text.WriteString("- For urgent matters, please contact the department directly\n")
	text.WriteString("\nThank you for using the Complaint Portal.\n")

	var rows strings.Builder
	for _, row := range details {
		fmt.Fprintf(&rows, "<tr><td><strong>%s</strong></td><td>%s</td></tr>",
			html.EscapeString(row[0]), html.EscapeString(row[1]))
	}
	htmlBody := fmt.Sprintf(`<div style="font-family:'Segoe UI',system-ui,sans-serif;color:#1f2937">
<h2 style="color:#1e40af">Complaint Registered Successfully</h2>
<p>Dear %s,</p>
<p>Your %s complaint has been submitted. Complaint ID: <strong>#%s</strong></p>
<table cellpadding="6" style="border-collapse:collapse">%s</table>
<h4>Description</h4>
<p>%s</p>
<h4 style="color:#f59e0b">What's Next?</h4>
<ul>
<li>Your complaint will be reviewed by the concerned department</li>
<li>You will receive updates on the status of your complaint</li>
<li>For urgent matters, please contact the department directly</li>
</ul>
<p>Thank you for using the Complaint Portal.</p>
</div>`,
		html.EscapeString(c.StudentName), html.EscapeString(string(c.Category)), html.EscapeString(c.ID),
		rows.String(), html.EscapeString(c.Description))

	return Job{
		Recipient:      c.UserEmail,
		Subject:        fmt.Sprintf("%s Complaint Registered - #%s", c.Category, c.ID),
		HTMLBody:       htmlBody,
		TextBody:       text.String(),
		AttachmentKeys: c.Attachments,
		Category:       string(c.Category),
		ComplaintID:    c.ID,
	}
}

func detailRows(c complaint.Complaint) [][2]string {
	rows := [][2]string{
		{"Scholar Number", c.ScholarNumber},
		{"Student Name", c.StudentName},
		{"Status", string(c.Status)},
	}
	if c.ComplainType != "" {
		rows = append(rows, [2]string{"Complaint Type", c.ComplainType})
	}
	optional := [][2]string{
		{"Hostel Number", c.HostelNumber},
		{"Room", c.Room},
		{"Department", c.Department},
		{"Stream", c.Stream},
		{"Year", c.Year},
		{"Landmark", c.Landmark},
	}
	for _, row := range optional {
		if row[1] != "" {
			rows = append(rows, row)
		}
	}
	return rows
}

// Feedback is a free-form submission mailed to the portal team rather than
// stored.
type Feedback struct {
	ScholarNumber string   `json:"scholarNumber"`
	Name          string   `json:"name"`
	Stream        string   `json:"stream"`
	Year          string   `json:"year"`
	Department    string   `json:"department"`
	Description   string   `json:"description"`
	Attachments   []string `json:"-"`
}

// BuildFeedbackJob renders the feedback email addressed to the portal team.
func BuildFeedbackJob(recipient string, f Feedback) Job {
	rows := [][2]string{
		{"Scholar Number", f.ScholarNumber},
		{"Name", f.Name},
		{"Stream", f.Stream},
		{"Year", f.Year},
		{"Department", f.Department},
	}

	var text strings.Builder
	for _, row := range rows {
		if row[1] != "" {
			fmt.Fprintf(&text, "%s: %s\n", row[0], row[1])
		}
	}
	fmt.Fprintf(&text, "\n%s\n", f.Description)

	var table strings.Builder
	for _, row := range rows {
		if row[1] != "" {
			fmt.Fprintf(&table, "<tr><td><strong>%s</strong></td><td>%s</td></tr>",
				html.EscapeString(row[0]), html.EscapeString(row[1]))
		}
	}
	htmlBody := fmt.Sprintf(`<div style="font-family:'Segoe UI',system-ui,sans-serif;color:#1f2937">
<h2 style="color:#1e40af">Feedback Submission</h2>
<table cellpadding="6" style="border-collapse:collapse">%s</table>
<h4>Description</h4>
<p>%s</p>
</div>`, table.String(), html.EscapeString(f.Description))

	return Job{
		Recipient:      recipient,
		Subject:        fmt.Sprintf("Feedback from %s", f.ScholarNumber),
		HTMLBody:       htmlBody,
		TextBody:       text.String(),
		AttachmentKeys: f.Attachments,
	}
}
