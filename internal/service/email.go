package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/logger"
)

const brandName = "Blood Bank Management System"

// Message is a rendered email ready for delivery.
type Message struct {
	To        string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) Sender {
	return &sendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridSender) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.PlainText, msg.HTML)

	logger.ExternalServiceCall(ctx, "sendgrid", "send", "to", msg.To, "subject", msg.Subject)
	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult(ctx, "sendgrid", "send", err, "to", msg.To)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type logSender struct{}

// NewLogSender returns a Sender that only logs. Used when no email provider
// is configured.
func NewLogSender() Sender {
	return logSender{}
}

func (logSender) Send(ctx context.Context, msg Message) error {
	logger.InfoContext(ctx, "Email not sent, no provider configured", "to", msg.To, "subject", msg.Subject)
	return nil
}

type emailService struct {
	sender      Sender
	frontendURL string
}

func NewEmailService(sender Sender, frontendURL string) EmailService {
	return &emailService{sender: sender, frontendURL: strings.TrimRight(frontendURL, "/")}
}

func (s *emailService) SendWelcome(ctx context.Context, to, name string, role domain.Role) error {
	plain := fmt.Sprintf("Hello %s,\n\nWelcome to the %s! Thank you for joining our community.\n\n"+
		"Your role: %s. You can now use every feature available to %ss.\n\nGet started: %s\n",
		name, brandName, role, role, s.frontendURL)
	body := fmt.Sprintf(`<h2>Hello %s,</h2>
<p>Welcome to the %s! Thank you for joining our community.</p>
<h3>Your role: %s</h3>
<p>You can now use every feature available to %ss.</p>`,
		html.EscapeString(name), brandName, role, role)

	return s.sender.Send(ctx, Message{
		To:        to,
		ToName:    name,
		Subject:   "Welcome to " + brandName,
		PlainText: plain,
		HTML:      s.layout("#e74c3c", "Welcome to Blood Bank", body, "Get Started"),
	})
}

func (s *emailService) SendRequestApproved(ctx context.Context, to, name string, req *domain.BloodRequest) error {
	plain := fmt.Sprintf("Hello %s,\n\nYour blood request has been approved.\n\n"+
		"Blood type: %s\nUnits: %d\n\nPlease contact us to arrange pickup or delivery: %s\n",
		name, req.BloodType, req.Units, s.frontendURL)
	body := fmt.Sprintf(`<h2>Hello %s,</h2>
<p>Great news! Your blood request has been approved.</p>
<p><strong>Blood Type:</strong> %s</p>
<p><strong>Units:</strong> %d</p>
<p>Please contact us to arrange pickup or delivery.</p>`,
		html.EscapeString(name), req.BloodType, req.Units)

	return s.sender.Send(ctx, Message{
		To:        to,
		ToName:    name,
		Subject:   "Blood Request Approved",
		PlainText: plain,
		HTML:      s.layout("#28a745", "Blood Request Approved", body, "View Details"),
	})
}

func (s *emailService) SendDonationReminder(ctx context.Context, to, name string, d *domain.Donation) error {
	date := d.Date.Format("Monday, January 2, 2006")
	plain := fmt.Sprintf("Hello %s,\n\nThis is a reminder about your blood donation scheduled for %s at %s.\n\n"+
		"Get a good night's sleep, eat a healthy meal, stay hydrated and bring a valid ID.\n\n"+
		"Thank you for saving lives!\n",
		name, date, d.Location)
	body := fmt.Sprintf(`<h2>Hello %s,</h2>
<p>This is a friendly reminder about your upcoming blood donation scheduled for <strong>%s</strong> at %s.</p>
<ul>
<li>Get a good night's sleep</li>
<li>Eat a healthy meal before donation</li>
<li>Stay hydrated</li>
<li>Bring a valid ID</li>
</ul>
<p>Thank you for your commitment to saving lives through blood donation!</p>`,
		html.EscapeString(name), date, html.EscapeString(d.Location))

	return s.sender.Send(ctx, Message{
		To:        to,
		ToName:    name,
		Subject:   "Blood Donation Reminder",
		PlainText: plain,
		HTML:      s.layout("#e74c3c", brandName, body, "Visit Our Website"),
	})
}

func (s *emailService) SendLowStockAlert(ctx context.Context, to string, alert domain.LowStockAlert) error {
	plain := fmt.Sprintf("We are running low on %s blood.\n\nAvailable units: %d (threshold %d, %s).\n\n"+
		"Please encourage donors with %s blood to donate.\n",
		alert.BloodType, alert.CurrentUnits, alert.Threshold, alert.Urgency, alert.BloodType)
	body := fmt.Sprintf(`<h2>Urgent Notice</h2>
<p>We are running low on %s blood.</p>
<p><strong>Available Units:</strong> %d</p>
<p><strong>Status:</strong> %s</p>
<p>Please encourage donors with %s blood to donate.</p>`,
		alert.BloodType, alert.CurrentUnits, alert.Urgency, alert.BloodType)

	return s.sender.Send(ctx, Message{
		To:        to,
		Subject:   fmt.Sprintf("Low Stock Alert: %s", alert.BloodType),
		PlainText: plain,
		HTML:      s.layout("#dc3545", "Low Stock Alert", body, "View Inventory"),
	})
}

func (s *emailService) SendBroadcast(ctx context.Context, to, subject, message string) error {
	body := "<p>" + strings.ReplaceAll(html.EscapeString(message), "\n", "<br>") + "</p>"
	return s.sender.Send(ctx, Message{
		To:        to,
		Subject:   subject,
		PlainText: message,
		HTML:      s.layout("#e74c3c", brandName, body, "Visit Our Website"),
	})
}

func (s *emailService) layout(color, title, body, cta string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<div style="background: %[1]s; color: white; padding: 20px; text-align: center;"><h1 style="margin: 0;">%[2]s</h1></div>
<div style="padding: 30px; background: #f8f9fa;">%[3]s
<div style="text-align: center; margin-top: 30px;"><a href="%[4]s" style="background: %[1]s; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px;">%[5]s</a></div>
</div>
<div style="background: #333; color: white; padding: 20px; text-align: center;"><p style="margin: 0;">%[6]s</p></div>
</div>`, color, title, body, html.EscapeString(s.frontendURL), cta, brandName)
}
