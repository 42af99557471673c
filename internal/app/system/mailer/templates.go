// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// BorrowReceiptData holds data for the borrow receipt email.
type BorrowReceiptData struct {
	SiteName     string
	BorrowerName string
	ToyName      string
	UnitNumber   int
	IssueDate    time.Time
	DueDate      time.Time
}

// BuildBorrowReceipt creates the email sent when a toy is issued.
func BuildBorrowReceipt(data BorrowReceiptData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("%s: you borrowed %s", data.SiteName, data.ToyName),
		TextBody: buildBorrowReceiptText(data),
		HTMLBody: renderHTML("borrow_receipt", borrowReceiptHTMLTemplate, data),
	}
}

func buildBorrowReceiptText(data BorrowReceiptData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Hi %s,\n\n", data.BorrowerName))
	buf.WriteString(fmt.Sprintf("You borrowed %s (unit #%d) on %s.\n", data.ToyName, data.UnitNumber, data.IssueDate.Format("January 2, 2006")))
	buf.WriteString(fmt.Sprintf("Please return it by %s.\n\n", data.DueDate.Format("January 2, 2006")))
	buf.WriteString("Thank you for taking good care of our toys.\n")
	return buf.String()
}

// OverdueNoticeData holds data for the overdue reminder email.
type OverdueNoticeData struct {
	SiteName     string
	BorrowerName string
	ToyName      string
	UnitNumber   int
	DueDate      time.Time
	DaysOverdue  int
}

// BuildOverdueNotice creates the reminder sent when a borrowing passes its
// due date.
func BuildOverdueNotice(data OverdueNoticeData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("%s: %s is overdue", data.SiteName, data.ToyName),
		TextBody: buildOverdueNoticeText(data),
		HTMLBody: renderHTML("overdue_notice", overdueNoticeHTMLTemplate, data),
	}
}

func buildOverdueNoticeText(data OverdueNoticeData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Hi %s,\n\n", data.BorrowerName))
	buf.WriteString(fmt.Sprintf("%s (unit #%d) was due back on %s and is now %d day(s) overdue.\n\n",
		data.ToyName, data.UnitNumber, data.DueDate.Format("January 2, 2006"), data.DaysOverdue))
	buf.WriteString("Please return it at your next visit, or reply to this email if it has been lost or damaged.\n")
	return buf.String()
}

// DamageReportData holds data for the staff notification sent when a toy
// comes back damaged.
type DamageReportData struct {
	SiteName     string
	ToyName      string
	UnitNumber   int
	BorrowerName string
	Condition    string
	ReturnDate   time.Time
	Notes        string
}

// BuildDamageReport creates the staff alert for a damaged return.
func BuildDamageReport(data DamageReportData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("%s: %s (unit #%d) returned damaged", data.SiteName, data.ToyName, data.UnitNumber),
		TextBody: buildDamageReportText(data),
		HTMLBody: renderHTML("damage_report", damageReportHTMLTemplate, data),
	}
}

func buildDamageReportText(data DamageReportData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("%s (unit #%d) was returned by %s on %s in condition %q.\n",
		data.ToyName, data.UnitNumber, data.BorrowerName, data.ReturnDate.Format("January 2, 2006"), data.Condition))
	if data.Notes != "" {
		buf.WriteString("\nNotes:\n" + data.Notes + "\n")
	}
	buf.WriteString("\nPlease inspect the unit before it goes back on the shelf.\n")
	return buf.String()
}

// WebinarConfirmationData holds data for the webinar registration email.
type WebinarConfirmationData struct {
	SiteName     string
	AttendeeName string
	WebinarTitle string
	StartAt      time.Time
	JoinURL      string
}

// BuildWebinarConfirmation creates the email sent after a successful
// webinar registration.
func BuildWebinarConfirmation(data WebinarConfirmationData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("%s: you're registered for %s", data.SiteName, data.WebinarTitle),
		TextBody: buildWebinarConfirmationText(data),
		HTMLBody: renderHTML("webinar_confirmation", webinarConfirmationHTMLTemplate, data),
	}
}

func buildWebinarConfirmationText(data WebinarConfirmationData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Hi %s,\n\n", data.AttendeeName))
	buf.WriteString(fmt.Sprintf("You are registered for %q on %s.\n\n", data.WebinarTitle, data.StartAt.Format("January 2, 2006 at 3:04 PM MST")))
	if data.JoinURL != "" {
		buf.WriteString("Join link:\n" + data.JoinURL + "\n\n")
	}
	buf.WriteString("See you there.\n")
	return buf.String()
}

func renderHTML(name, tmpl string, data any) string {
	t := template.Must(template.New(name).Parse(tmpl))
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.String()
}

const emailShellTop = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #0f766e;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px; font-size: 16px; color: #374151; line-height: 1.5;">`

const emailShellBottom = `            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

const borrowReceiptHTMLTemplate = emailShellTop + `
              <p style="margin: 0 0 16px;">Hi {{.BorrowerName}},</p>
              <p style="margin: 0 0 16px;">You borrowed <strong>{{.ToyName}}</strong> (unit #{{.UnitNumber}}) on {{.IssueDate.Format "January 2, 2006"}}.</p>
              <p style="margin: 0 0 16px;">Please return it by <strong>{{.DueDate.Format "January 2, 2006"}}</strong>.</p>
              <p style="margin: 0; color: #6b7280; font-size: 14px;">Thank you for taking good care of our toys.</p>
` + emailShellBottom

const overdueNoticeHTMLTemplate = emailShellTop + `
              <p style="margin: 0 0 16px;">Hi {{.BorrowerName}},</p>
              <p style="margin: 0 0 16px;"><strong>{{.ToyName}}</strong> (unit #{{.UnitNumber}}) was due back on {{.DueDate.Format "January 2, 2006"}} and is now {{.DaysOverdue}} day(s) overdue.</p>
              <p style="margin: 0; color: #6b7280; font-size: 14px;">Please return it at your next visit, or reply to this email if it has been lost or damaged.</p>
` + emailShellBottom

const damageReportHTMLTemplate = emailShellTop + `
              <p style="margin: 0 0 16px;"><strong>{{.ToyName}}</strong> (unit #{{.UnitNumber}}) was returned by {{.BorrowerName}} on {{.ReturnDate.Format "January 2, 2006"}} in condition <strong>{{.Condition}}</strong>.</p>
              {{if .Notes}}<p style="margin: 0 0 16px;">Notes: {{.Notes}}</p>{{end}}
              <p style="margin: 0; color: #6b7280; font-size: 14px;">Please inspect the unit before it goes back on the shelf.</p>
` + emailShellBottom

const webinarConfirmationHTMLTemplate = emailShellTop + `
              <p style="margin: 0 0 16px;">Hi {{.AttendeeName}},</p>
              <p style="margin: 0 0 16px;">You are registered for <strong>{{.WebinarTitle}}</strong> on {{.StartAt.Format "January 2, 2006 at 3:04 PM MST"}}.</p>
              {{if .JoinURL}}<p style="margin: 0 0 16px;"><a href="{{.JoinURL}}" style="color: #0f766e;">Join the webinar</a></p>{{end}}
              <p style="margin: 0; color: #6b7280; font-size: 14px;">See you there.</p>
` + emailShellBottom
