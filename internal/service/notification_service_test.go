package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/undarez/camper-splatchs-sub001/pkg/mail"
)

func TestNotificationService_Send(t *testing.T) {
	payload := NotificationPayload{
		StationID:   "s1",
		StationName: "Lavage <Océan>",
		StationType: "WASH_STATION",
		Address:     "1 quai Ouest",
		City:        "Brest",
		Status:      "ACTIVE",
		AuthorEmail: "author@example.fr",
	}

	t.Run("created notice", func(t *testing.T) {
		mailer := &fakeMailer{}
		svc := NewNotificationService("https://splashcamper.fr/", mailer, 0, zap.NewNop())

		if !svc.Send(context.Background(), "contact@splashcamper.fr", KindStationCreated, payload) {
			t.Fatal("expected success")
		}
		msg := mailer.sent[0]
		if !strings.Contains(msg.Subject, "Lavage <Océan>") {
			t.Errorf("unexpected subject %q", msg.Subject)
		}
		if !strings.Contains(msg.HTMLBody, "Lavage &lt;Océan&gt;") {
			t.Error("station name must be HTML escaped in the body")
		}
		if !strings.Contains(msg.HTMLBody, "https://splashcamper.fr/admin/stations/pending") {
			t.Error("expected the validation queue link")
		}
	})

	t.Run("validated notice", func(t *testing.T) {
		mailer := &fakeMailer{}
		svc := NewNotificationService("https://splashcamper.fr", mailer, 0, zap.NewNop())

		if !svc.Send(context.Background(), "author@example.fr", KindStationValidated, payload) {
			t.Fatal("expected success")
		}
		body := mailer.sent[0].HTMLBody
		if !strings.Contains(body, "en ligne") || !strings.Contains(body, "/stations/s1") {
			t.Errorf("unexpected body %s", body)
		}
	})

	t.Run("no recipient", func(t *testing.T) {
		mailer := &fakeMailer{}
		svc := NewNotificationService("", mailer, 0, zap.NewNop())
		if svc.Send(context.Background(), " ", KindStationCreated, payload) {
			t.Error("expected failure without recipient")
		}
		if len(mailer.sent) != 0 {
			t.Error("nothing should be sent")
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		svc := NewNotificationService("", &fakeMailer{}, 0, zap.NewNop())
		if svc.Send(context.Background(), "a@b.fr", "digest", payload) {
			t.Error("expected failure for an unknown template")
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		svc := NewNotificationService("", &fakeMailer{err: errors.New("550 rejected")}, 0, zap.NewNop())
		if svc.Send(context.Background(), "a@b.fr", KindStationValidated, payload) {
			t.Error("expected failure to be reported as false")
		}
	})

	t.Run("nil mailer logs only", func(t *testing.T) {
		svc := NewNotificationService("", nil, 0, zap.NewNop())
		if !svc.Send(context.Background(), "a@b.fr", KindStationValidated, payload) {
			t.Error("log sender should report success")
		}
	})
}

// stallingMailer blocks until its context ends, like an unresponsive relay
type stallingMailer struct {
	callerCanceled bool
}

func (m *stallingMailer) Send(ctx context.Context, _ mail.Message) error {
	m.callerCanceled = ctx.Err() != nil
	<-ctx.Done()
	return ctx.Err()
}

func TestNotificationService_SendIsBounded(t *testing.T) {
	payload := NotificationPayload{StationID: "s1", StationName: "Lavage"}
	mailer := &stallingMailer{}
	svc := NewNotificationService("", mailer, 30*time.Millisecond, zap.NewNop())

	// the request context is already gone; delivery still starts
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if svc.Send(ctx, "a@b.fr", KindStationValidated, payload) {
		t.Error("a stalled relay must be reported as not delivered")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Send blocked for %s, expected the mail timeout to cut it off", elapsed)
	}
	if mailer.callerCanceled {
		t.Error("delivery should not inherit the caller's cancellation")
	}
}
