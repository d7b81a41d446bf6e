package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/undarez/camper-splatchs-sub001/pkg/mail"
)

// NotificationKind selects the email template
type NotificationKind string

const (
	KindStationCreated   NotificationKind = "station_created"
	KindStationValidated NotificationKind = "station_validated"
)

// NotificationPayload fields available to the templates
type NotificationPayload struct {
	StationID   string
	StationName string
	StationType string
	Address     string
	City        string
	Status      string
	AuthorEmail string
}

// NotificationService best-effort transactional email.
// Send never fails the caller: it reports success and logs the rest.
// Delivery ignores the caller's cancellation but is cut off after the
// configured timeout.
type NotificationService interface {
	Send(ctx context.Context, to string, kind NotificationKind, payload NotificationPayload) bool
}

type notificationTemplate struct {
	subject string // fmt verb receives the station name
	body    *template.Template
}

var notificationTemplates = map[NotificationKind]notificationTemplate{
	KindStationCreated: {
		subject: "Nouvelle station à valider : %s",
		body: template.Must(template.New("station_created").Parse(`<h2>Nouvelle station proposée</h2>
<p><strong>{{.StationName}}</strong> ({{.StationType}})</p>
<p>{{.Address}}, {{.City}}</p>
<p>Proposée par {{.AuthorEmail}}</p>
<p><a href="{{.Link}}">Ouvrir la file de validation</a></p>`)),
	},
	KindStationValidated: {
		subject: "Votre station %s a été examinée",
		body: template.Must(template.New("station_validated").Parse(`<h2>Merci pour votre contribution</h2>
<p>La station <strong>{{.StationName}}</strong> ({{.Address}}, {{.City}}) est maintenant
{{if eq .Status "ACTIVE"}}<strong>en ligne</strong>{{else}}<strong>désactivée</strong>{{end}}.</p>
<p><a href="{{.Link}}">Voir la station</a></p>`)),
	},
}

// defaultSendTimeout applies when no mail timeout is configured
const defaultSendTimeout = 10 * time.Second

type notificationService struct {
	baseURL string
	mailer  Mailer
	timeout time.Duration
	logger  *zap.Logger
}

// NewNotificationService creates a NotificationService; a nil mailer only logs
func NewNotificationService(baseURL string, mailer Mailer, timeout time.Duration, logger *zap.Logger) NotificationService {
	if mailer == nil {
		mailer = mail.NewLogSender(logger)
	}
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &notificationService{
		baseURL: strings.TrimRight(baseURL, "/"),
		mailer:  mailer,
		timeout: timeout,
		logger:  logger,
	}
}

func (s *notificationService) Send(ctx context.Context, to string, kind NotificationKind, payload NotificationPayload) bool {
	if strings.TrimSpace(to) == "" {
		s.logger.Debug("notification skipped, no recipient", zap.String("kind", string(kind)))
		return false
	}

	tpl, ok := notificationTemplates[kind]
	if !ok {
		s.logger.Error("unknown notification kind", zap.String("kind", string(kind)))
		return false
	}

	data := struct {
		NotificationPayload
		Link string
	}{NotificationPayload: payload, Link: s.link(kind, payload.StationID)}

	var body bytes.Buffer
	if err := tpl.body.Execute(&body, data); err != nil {
		s.logger.Error("render notification failed", zap.String("kind", string(kind)), zap.Error(err))
		return false
	}

	subject := fmt.Sprintf(tpl.subject, payload.StationName)

	// the station is already committed; a client hanging up must not abort
	// the notice, and a stuck relay must not hold the request forever
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.mailer.Send(sendCtx, mail.Message{To: to, Subject: subject, HTMLBody: body.String()}); err != nil {
		s.logger.Warn("notification not delivered",
			zap.String("kind", string(kind)),
			zap.String("station_id", payload.StationID),
			zap.Error(err),
		)
		return false
	}

	s.logger.Info("notification sent",
		zap.String("kind", string(kind)),
		zap.String("station_id", payload.StationID),
	)
	return true
}

func (s *notificationService) link(kind NotificationKind, stationID string) string {
	if kind == KindStationCreated {
		return s.baseURL + "/admin/stations/pending"
	}
	return s.baseURL + "/stations/" + stationID
}
