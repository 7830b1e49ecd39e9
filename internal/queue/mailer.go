package queue

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Mail is a rendered plain text message.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers rendered mails.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// SMTPMailer sends mails through an SMTP relay with PLAIN auth.
type SMTPMailer struct {
	Addr string // host:port
	Host string
	User string
	Pass string
	From string
}

// NewSMTPMailer builds an SMTPMailer for host:port.
func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{
		Addr: host + ":" + strconv.Itoa(port),
		Host: host,
		User: user,
		Pass: pass,
		From: from,
	}
}

func (m *SMTPMailer) Send(_ context.Context, mail Mail) error {
	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}
	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + mail.To,
		"Subject: " + mail.Subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		mail.Body,
	}, "\r\n")
	if err := smtp.SendMail(m.Addr, auth, m.From, []string{mail.To}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", mail.To, err)
	}
	return nil
}

// FileMailer appends mails to a log file.  It stands in for SMTP in
// development.
type FileMailer struct {
	mu   sync.Mutex
	Path string
}

// NewFileMailer returns a FileMailer writing to path.
func NewFileMailer(path string) *FileMailer { return &FileMailer{Path: path} }

func (m *FileMailer) Send(_ context.Context, mail Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(m.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(m.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	entry := fmt.Sprintf("[%s] to=%s subject=%q\n%s\n---\n",
		time.Now().UTC().Format(time.RFC3339), mail.To, mail.Subject, mail.Body)
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
