package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resend/resend-go"
)

var errEmailNotConfigured = errors.New("email sender not configured")

type ResendEmailSender struct {
	client     *resend.Client
	From       string
	AppBaseURL string
	ResetPath  string
}

func NewResendEmailSender(apiKey string, from string, appBaseURL string) *ResendEmailSender {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(from) == "" {
		return &ResendEmailSender{}
	}
	return &ResendEmailSender{
		client:     resend.NewClient(apiKey),
		From:       from,
		AppBaseURL: strings.TrimRight(appBaseURL, "/"),
		ResetPath:  "/redefinir-senha",
	}
}

func (s *ResendEmailSender) SendPasswordResetEmail(ctx context.Context, email string, token string) error {
	if s.client == nil {
		return errEmailNotConfigured
	}
	link := s.buildURL(s.ResetPath, token)
	subject := "Redefinição de senha"
	html := fmt.Sprintf("<p>Para redefinir sua senha, clique no link abaixo:</p><p><a href=\"%s\">Redefinir senha</a></p>", link)
	text := fmt.Sprintf("Redefina sua senha: %s", link)
	return s.send(ctx, email, subject, html, text)
}

func (s *ResendEmailSender) buildURL(path string, token string) string {
	if s.AppBaseURL == "" {
		return token
	}
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s%s?token=%s", s.AppBaseURL, path, token)
}

func (s *ResendEmailSender) send(ctx context.Context, to string, subject string, html string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    s.From,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}
