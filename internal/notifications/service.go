package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/moodlens/aura-tracker/internal/config"
	"github.com/moodlens/aura-tracker/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service delivers alert digests to Teams and e-mail
type Service struct {
	config *config.Config
	client *resty.Client
	send   func(m *gomail.Message) error
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message card
type TeamsMessage struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor,omitempty"`
	Title      string         `json:"title"`
	Text       string         `json:"text"`
	Sections   []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle    string      `json:"activityTitle,omitempty"`
	ActivitySubtitle string      `json:"activitySubtitle,omitempty"`
	ActivityText     string      `json:"activityText,omitempty"`
	Facts            []TeamsFact `json:"facts,omitempty"`
	Markdown         bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a notification service
func NewService(cfg *config.Config) *Service {
	s := &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
	s.send = func(m *gomail.Message) error {
		d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
		return d.DialAndSend(m)
	}
	return s
}

// SendDigest sends a watched user's alerts via every configured channel. An empty digest
// is not sent.
func (s *Service) SendDigest(digest *models.AlertDigest) error {
	if digest == nil || len(digest.Alerts) == 0 {
		return nil
	}

	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.sendToTeams(digest); err != nil {
			logrus.Errorf("Failed to send Teams notification: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Infof("Sent alert digest for %s to Teams", digest.Username)
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(digest); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Infof("Sent alert digest for %s via email", digest.Username)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToTeams(digest *models.AlertDigest) error {
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(s.buildTeamsMessage(digest)).
		Post(s.config.TeamsWebhookURL)
	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildTeamsMessage(digest *models.AlertDigest) *TeamsMessage {
	message := &TeamsMessage{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: "605E5C",
		Title:      fmt.Sprintf("Mood alerts for u/%s", digest.Username),
		Text: fmt.Sprintf("%d day(s) averaged below %.2f in the last lookback window",
			len(digest.Alerts), digest.Threshold),
	}

	facts := []TeamsFact{
		{Name: "User", Value: digest.Username},
		{Name: "Threshold", Value: fmt.Sprintf("%.2f", digest.Threshold)},
		{Name: "Generated", Value: digest.GeneratedAt.Format("2006-01-02 15:04:05 UTC")},
	}
	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "Summary",
		Facts:         facts,
		Markdown:      true,
	})

	var days []string
	for _, alert := range digest.Alerts {
		days = append(days, fmt.Sprintf("**%s**: %s (avg %.3f)", alert.Date, alert.Message, alert.AvgCompound))
	}
	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "Flagged Days",
		ActivityText:  strings.Join(days, "\n\n"),
		Markdown:      true,
	})

	return message
}

func (s *Service) sendEmail(digest *models.AlertDigest) error {
	subject := fmt.Sprintf("Mood alerts for u/%s (%d day(s))", digest.Username, len(digest.Alerts))

	htmlBody, err := buildEmailHTML(digest)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", buildEmailText(digest))
	m.AddAlternative("text/html", htmlBody)

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

var emailTemplate = template.Must(template.New("email").Funcs(template.FuncMap{
	"score": func(v float64) string { return fmt.Sprintf("%.3f", v) },
}).Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Mood alerts</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #605e5c; color: white; padding: 20px; border-radius: 5px; }
        .alert { border-left: 4px solid #d13438; padding: 10px; margin: 10px 0; background-color: #fafafa; }
        .meta { color: #666; font-size: 0.9em; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Mood alerts for u/{{.Username}}</h1>
        <p>Generated on {{.GeneratedAt.Format "January 2, 2006 at 3:04 PM UTC"}}, threshold {{score .Threshold}}</p>
    </div>
    {{range .Alerts}}
    <div class="alert">
        <strong>{{.Date}}</strong>: {{.Message}}
        <div class="meta">Average compound {{score .AvgCompound}}</div>
    </div>
    {{end}}
    <hr>
    <p><small>Heuristic signal only, not a clinical assessment.</small></p>
</body>
</html>
`))

func buildEmailHTML(digest *models.AlertDigest) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, digest); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildEmailText(digest *models.AlertDigest) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("Mood alerts for u/%s\n", digest.Username))
	text.WriteString(fmt.Sprintf("Generated: %s\n", digest.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))
	text.WriteString(fmt.Sprintf("Threshold: %.3f\n\n", digest.Threshold))

	text.WriteString("FLAGGED DAYS\n")
	text.WriteString("============\n")
	for i, alert := range digest.Alerts {
		text.WriteString(fmt.Sprintf("%d. %s  %s (avg %.3f)\n", i+1, alert.Date, alert.Message, alert.AvgCompound))
	}

	text.WriteString("\n---\nHeuristic signal only, not a clinical assessment.\n")

	return text.String()
}
