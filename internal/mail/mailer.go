package mail

import (
	"fmt"
	"os"

	gomail "github.com/wneessen/go-mail"

	"github.com/dmarceta/meet-accounts-be/internal/config"
)

// Message is a rendered outgoing email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer dispatches account emails. The reset flow only depends on this
// interface; the concrete backend is chosen from configuration.
type Mailer interface {
	Send(msg Message) error
}

// New builds the mailer selected by the configuration.
func New(cfg *config.Config) (Mailer, error) {
	switch cfg.EmailBackend {
	case config.EmailBackendConsole:
		return &ConsoleMailer{Out: os.Stderr}, nil
	case config.EmailBackendFile:
		return &FileMailer{Path: cfg.EmailFile}, nil
	case config.EmailBackendSMTP:
		return NewSMTPMailer(cfg)
	default:
		return nil, fmt.Errorf("unknown email backend %q", cfg.EmailBackend)
	}
}

// ConsoleMailer prints messages instead of delivering them. Development only.
type ConsoleMailer struct {
	Out *os.File
}

func (m *ConsoleMailer) Send(msg Message) error {
	_, err := fmt.Fprintf(m.Out, "---- email ----\nTo: %s\nSubject: %s\n\n%s\n---------------\n", msg.To, msg.Subject, msg.Body)
	return err
}

// FileMailer appends messages to a local file instead of delivering them.
type FileMailer struct {
	Path string
}

func (m *FileMailer) Send(msg Message) error {
	f, err := os.OpenFile(m.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "To: %s\nSubject: %s\n\n%s\n\n", msg.To, msg.Subject, msg.Body)
	return err
}

// SMTPMailer delivers messages through an SMTP relay.
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

// NewSMTPMailer connects the mailer to the relay named in the configuration.
func NewSMTPMailer(cfg *config.Config) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.SMTPPort),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.SMTPUsername),
			gomail.WithPassword(cfg.SMTPPassword),
		)
	}
	client, err := gomail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.EmailFrom}, nil
}

func (m *SMTPMailer) Send(msg Message) error {
	mm := gomail.NewMsg()
	if err := mm.From(m.from); err != nil {
		return err
	}
	if err := mm.To(msg.To); err != nil {
		return err
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return m.client.DialAndSend(mm)
}
