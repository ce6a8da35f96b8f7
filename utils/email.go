package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"

	models "github.com/phillip/frolic-api/models"
)

// email request payload for ZeptoMail API
type emailRequest struct {
	From     emailAddress  `json:"from"`
	To       []toRecipient `json:"to"`
	Subject  string        `json:"subject"`
	HtmlBody string        `json:"htmlbody"`
}

type emailAddress struct {
	Address string `json:"address"`
}

type toRecipient struct {
	Email emailWithName `json:"email_address"`
}

type emailWithName struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// ZeptoMailer sends transactional email through the ZeptoMail HTTP API.
type ZeptoMailer struct {
	APIURL string // e.g. https://api.zeptomail.com/v1.1/email
	APIKey string // e.g. Zoho-enczapikey xxxxx
	From   string
	Client *http.Client
}

func NewZeptoMailer(apiURL, apiKey, from string) *ZeptoMailer {
	return &ZeptoMailer{APIURL: apiURL, APIKey: apiKey, From: from, Client: &http.Client{Timeout: 15 * time.Second}}
}

func (m *ZeptoMailer) Configured() bool {
	return m.APIURL != "" && m.APIKey != "" && m.From != ""
}

// SendEmail sends an HTML email to one recipient.
func (m *ZeptoMailer) SendEmail(ctx context.Context, to, toName, subject, body string) error {
	if !m.Configured() {
		return fmt.Errorf("missing required email config")
	}

	payload := emailRequest{
		From:     emailAddress{Address: m.From},
		To:       []toRecipient{{Email: emailWithName{Address: to, Name: toName}}},
		Subject:  subject,
		HtmlBody: body,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.APIURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", m.APIKey)

	resp, err := m.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("zeptomail API error: %s", resp.Status)
	}
	return nil
}

// PaymentConfirmed mails the student a receipt for their registration.
func (m *ZeptoMailer) PaymentConfirmed(ctx context.Context, user *models.User, event *models.Event, reg *models.Registration) error {
	subject := fmt.Sprintf("You're registered for %s", event.Name)
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Your registration for <strong>%s</strong> on %s is confirmed.</p>`+
			`<p>Amount paid: %.2f<br>Transaction: %s<br>Registration: %s</p>`,
		html.EscapeString(user.FullName),
		html.EscapeString(event.Name),
		event.EventDate.Format("02 Jan 2006"),
		reg.Amount,
		html.EscapeString(reg.TransactionID),
		reg.ID.Hex(),
	)
	return m.SendEmail(ctx, user.Email, user.FullName, subject, body)
}
