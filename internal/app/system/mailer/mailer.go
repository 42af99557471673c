// internal/app/system/mailer/mailer.go

// Package mailer delivers transactional email through the clinic's mail
// relay. Delivery is a collaborator behind the Sender interface so handlers
// and tests never talk to the relay directly.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Email is one outbound message.
type Email struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
	HTMLBody string `json:"html_body,omitempty"`
}

// Sender delivers an email. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Email) error
}

// relayResponse is the relay's JSON reply envelope.
type relayResponse struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
}

// HTTPSender posts messages to the mail relay's JSON API.
type HTTPSender struct {
	client *resty.Client
	from   string
	log    *zap.Logger
}

// NewHTTPSender builds a relay client. baseURL is the relay root; apiKey is
// sent as a bearer token; from is the envelope sender address.
func NewHTTPSender(baseURL, apiKey, from string, log *zap.Logger) *HTTPSender {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(15 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &HTTPSender{client: client, from: from, log: log}
}

// Send implements Sender.
func (s *HTTPSender) Send(ctx context.Context, msg Email) error {
	body := map[string]any{
		"from":      s.from,
		"to":        msg.To,
		"subject":   msg.Subject,
		"text_body": msg.TextBody,
		"html_body": msg.HTMLBody,
	}

	var reply relayResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&reply).
		Post("/v1/messages")
	if err != nil {
		s.log.Error("mail relay call failed",
			zap.Error(err),
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
		return fmt.Errorf("mail relay: %w", err)
	}
	if resp.IsError() || reply.Status != 0 {
		s.log.Error("mail relay rejected message",
			zap.Int("http_status", resp.StatusCode()),
			zap.Int("relay_status", reply.Status),
			zap.String("msg", reply.Msg),
			zap.String("to", msg.To))
		return fmt.Errorf("mail relay rejected message: %s (status %d)", reply.Msg, reply.Status)
	}

	s.log.Info("email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// NopSender discards messages. Used in dev mode and in tests that do not
// assert on mail.
type NopSender struct {
	log *zap.Logger
}

func NewNopSender(log *zap.Logger) *NopSender { return &NopSender{log: log} }

func (s *NopSender) Send(_ context.Context, msg Email) error {
	if s.log != nil {
		s.log.Info("email suppressed (nop sender)",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
	}
	return nil
}

// CaptureSender records messages for test assertions.
type CaptureSender struct {
	Sent []Email
}

func (s *CaptureSender) Send(_ context.Context, msg Email) error {
	s.Sent = append(s.Sent, msg)
	return nil
}
