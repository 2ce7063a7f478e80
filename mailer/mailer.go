// Package mailer delivers one-time verification codes by email. The sender
// is injected into the auth handlers so a slow or unavailable SMTP server
// never stalls a request beyond the configured timeout.
package mailer

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"fmt"
	"math/big"
	"net"
	"net/smtp"
	"os"
	"strconv"
	"time"
)

// Sender delivers a one-time code to a recipient.
type Sender interface {
	SendOTP(ctx context.Context, email, name, code string) error
}

// GenerateOTP returns a 6-digit numeric code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// SMTPSender sends OTP mails over plain SMTP with STARTTLS-capable auth.
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// NewSMTPSenderFromEnv builds a sender from SMTP_* environment variables.
func NewSMTPSenderFromEnv() *SMTPSender {
	timeout := 10 * time.Second
	if v := os.Getenv("SMTP_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}
	return &SMTPSender{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
		Timeout:  timeout,
	}
}

// SendOTP delivers the verification mail. The whole exchange is bounded by
// the sender timeout and the context deadline, whichever ends first.
func (s *SMTPSender) SendOTP(ctx context.Context, email, name, code string) error {
	addr := net.JoinHostPort(s.Host, s.Port)

	deadline := time.Now().Add(s.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	conn, err := net.DialTimeout("tcp", addr, time.Until(deadline))
	if err != nil {
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if s.Username != "" {
		auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(s.From); err != nil {
		return err
	}
	if err := client.Rcpt(email); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	msg := fmt.Sprintf(
		"From: Shivarajya Arts <%s>\r\nTo: %s\r\nSubject: Your OTP for Shivarajya Arts - Verification Code\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n"+
			"Dear %s,\r\n\r\nYour one-time verification code is %s.\r\n"+
			"It is valid for 10 minutes. Please do not share it with anyone.\r\n",
		s.From, email, name, code,
	)
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
