package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JDamianDelgado/ValleDePaz/internal/config"
	"github.com/JDamianDelgado/ValleDePaz/pkg/logger"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// SMTPNotifier delivers notices through an SMTP relay.
type SMTPNotifier struct {
	cfg config.SMTPConfig
}

func NewSMTPNotifier(cfg config.SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("mail sender address is required")
	}
	return &SMTPNotifier{cfg: cfg}, nil
}

func (n *SMTPNotifier) SendApproval(ctx context.Context, to, name string) error {
	return n.send(ctx, KindApproval, to, name)
}

func (n *SMTPNotifier) SendRejection(ctx context.Context, to, name string) error {
	return n.send(ctx, KindRejection, to, name)
}

func (n *SMTPNotifier) send(ctx context.Context, kind Kind, to, name string) error {
	start := time.Now()

	msg, err := n.buildMessage(kind, to, name)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(n.cfg.Host, n.clientOptions()...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		logger.Log.Error("Failed to send email",
			zap.String("kind", string(kind)),
			zap.String("to", to),
			zap.Error(err),
		)
		return fmt.Errorf("send %s email: %w", kind, err)
	}

	logger.Log.Info("Email sent",
		zap.String("kind", string(kind)),
		zap.String("to", to),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func (n *SMTPNotifier) buildMessage(kind Kind, to, name string) (*mail.Msg, error) {
	subject, body, err := Render(kind, name)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	return msg, nil
}

func (n *SMTPNotifier) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(15 * time.Second),
	}
	if n.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
		)
	}
	return opts
}
