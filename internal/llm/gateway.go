package llm

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrBackupUnavailable is reported when the primary provider fails and no
// backup provider is configured.
var ErrBackupUnavailable = eris.New("llm: backup provider unavailable")

// Gateway sends prompts to the primary provider and fails over to the
// backup on rate exhaustion or primary failure. One pass per provider, no
// backoff.
type Gateway struct {
	primary Provider
	backup  Provider
}

// NewGateway creates a Gateway. backup may be nil.
func NewGateway(primary, backup Provider) *Gateway {
	return &Gateway{primary: primary, backup: backup}
}

// Analyze runs the prompt through the primary provider; on failure it
// makes exactly one attempt against the backup.
func (g *Gateway) Analyze(ctx context.Context, prompt string) (string, error) {
	text, err := g.primary.Analyze(ctx, prompt)
	if err == nil {
		return text, nil
	}

	zap.L().Warn("llm: primary provider failed, switching to backup",
		zap.String("primary", g.primary.Name()),
		zap.Error(err),
	)

	if g.backup == nil || isNilProvider(g.backup) {
		return "", ErrBackupUnavailable
	}

	text, backupErr := g.backup.Analyze(ctx, prompt)
	if backupErr != nil {
		return "", eris.Wrap(backupErr, "llm: backup provider failed")
	}
	return text, nil
}

// isNilProvider guards against a typed-nil backup slipping through the
// Provider interface.
func isNilProvider(p Provider) bool {
	if ds, ok := p.(*DeepSeekProvider); ok {
		return ds == nil
	}
	return false
}
