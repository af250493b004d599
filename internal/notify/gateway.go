package notify

import (
	"context"
	"log"
)

// Result is the uniform outcome of every send operation. Provider failures are
// reported here, never as errors: callers treat a failed send as non-fatal and
// decide themselves whether to retry on a later pass.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// EmailSender delivers a single email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers a single SMS.
type SMSSender interface {
	Send(ctx context.Context, to, message string) error
}

// Gateway is the single entry point for outbound notifications. Either provider
// may be nil, in which case sends through that channel fail softly.
type Gateway struct {
	email EmailSender
	sms   SMSSender
}

// NewGateway creates a notification gateway
func NewGateway(email EmailSender, sms SMSSender) *Gateway {
	return &Gateway{email: email, sms: sms}
}

// SendEmail sends an email and reports the outcome.
func (g *Gateway) SendEmail(ctx context.Context, to, subject, body string) Result {
	if g.email == nil {
		return Result{Success: false, Message: "Failed to send email", Error: "email provider not configured"}
	}

	if err := g.email.Send(ctx, to, subject, body); err != nil {
		log.Printf("[notify] email to %s failed: %v", to, err)
		return Result{Success: false, Message: "Failed to send email", Error: err.Error()}
	}

	log.Printf("[notify] email sent to %s: %s", to, subject)
	return Result{Success: true, Message: "Email sent successfully"}
}

// SendSMS sends an SMS and reports the outcome.
func (g *Gateway) SendSMS(ctx context.Context, to, message string) Result {
	if g.sms == nil {
		return Result{Success: false, Message: "Failed to send SMS", Error: "sms provider not configured"}
	}

	if err := g.sms.Send(ctx, to, message); err != nil {
		log.Printf("[notify] sms to %s failed: %v", to, err)
		return Result{Success: false, Message: "Failed to send SMS", Error: err.Error()}
	}

	log.Printf("[notify] sms sent to %s", to)
	return Result{Success: true, Message: "SMS sent successfully"}
}
