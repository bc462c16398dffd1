package notification

import (
	"context"

	"github.com/JDamianDelgado/ValleDePaz/pkg/logger"
	"go.uber.org/zap"
)

// LogNotifier renders notices and writes them to the log instead of
// sending them. Used when no SMTP relay is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) SendApproval(ctx context.Context, to, name string) error {
	return n.log(KindApproval, to, name)
}

func (n *LogNotifier) SendRejection(ctx context.Context, to, name string) error {
	return n.log(KindRejection, to, name)
}

func (n *LogNotifier) log(kind Kind, to, name string) error {
	subject, _, err := Render(kind, name)
	if err != nil {
		return err
	}
	logger.Log.Info("Email delivery disabled, notice logged",
		zap.String("kind", string(kind)),
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
