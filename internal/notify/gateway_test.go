package notify

import (
	"context"
	"errors"
	"testing"
)

type fakeEmail struct {
	err   error
	calls int
}

func (f *fakeEmail) Send(ctx context.Context, to, subject, body string) error {
	f.calls++
	return f.err
}

type fakeSMS struct {
	err   error
	calls int
}

func (f *fakeSMS) Send(ctx context.Context, to, message string) error {
	f.calls++
	return f.err
}

func TestGateway_SendSMS(t *testing.T) {
	tests := []struct {
		name        string
		sms         *fakeSMS
		wantSuccess bool
		wantError   string
	}{
		{
			name:        "successful send",
			sms:         &fakeSMS{},
			wantSuccess: true,
		},
		{
			name:        "provider failure reported in result",
			sms:         &fakeSMS{err: errors.New("provider timeout")},
			wantSuccess: false,
			wantError:   "provider timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGateway(nil, tt.sms)

			result := g.SendSMS(context.Background(), "+2348011111111", "hello")
			if result.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", result.Success, tt.wantSuccess)
			}
			if result.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", result.Error, tt.wantError)
			}
			if tt.sms.calls != 1 {
				t.Errorf("provider called %d times, want 1", tt.sms.calls)
			}
		})
	}
}

func TestGateway_SendEmail(t *testing.T) {
	email := &fakeEmail{}
	g := NewGateway(email, nil)

	result := g.SendEmail(context.Background(), "amina@example.com", "Welcome", "body")
	if !result.Success {
		t.Errorf("Success = false, want true: %s", result.Error)
	}
	if email.calls != 1 {
		t.Errorf("provider called %d times, want 1", email.calls)
	}
}

func TestGateway_UnconfiguredProvidersFailSoftly(t *testing.T) {
	g := NewGateway(nil, nil)

	if result := g.SendSMS(context.Background(), "+2348011111111", "hello"); result.Success {
		t.Error("SendSMS with no provider must not report success")
	}
	if result := g.SendEmail(context.Background(), "amina@example.com", "s", "b"); result.Success {
		t.Error("SendEmail with no provider must not report success")
	}
}
