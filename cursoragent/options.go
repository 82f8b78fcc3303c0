package cursoragent

import (
	"time"

	"github.com/inkwell-app/agentbridge/internal/logging"
)

// Options is the read-only configuration snapshot one invocation consumes.
// The bridge copies it at Send time, so mutating the source afterwards never
// affects a turn already in flight.
type Options struct {
	// BinaryPath, when set, is the only executable candidate tried.
	BinaryPath string
	// APIKey is the configured key, used only when neither the environment
	// credential nor a CLI login is available.
	APIKey string
	// Model selects the model for new sessions. Resumed sessions keep the
	// model the remote side already owns, so it is omitted on resume.
	Model string
	// WorkingDirectory is the agent's cwd.
	WorkingDirectory string
	// Unattended runs tools without interactive approval (--force) and
	// closes stdin immediately since no approval handshake can happen.
	Unattended bool
	// ProbeTimeout bounds the login-status probe. Zero means the default.
	ProbeTimeout time.Duration
	// Logger receives bridge diagnostics. Nil means the package default.
	Logger *logging.Logger
}

// OptionsPatch is a partial update applied by Bridge.UpdateOptions. Nil
// fields keep their current value.
type OptionsPatch struct {
	BinaryPath       *string
	APIKey           *string
	Model            *string
	WorkingDirectory *string
	Unattended       *bool
}

// SendOption adjusts a single Send call.
type SendOption func(*sendConfig)

type sendConfig struct {
	resume string
}

// WithResume resumes the given remote session instead of the bridge's
// remembered one.
func WithResume(sessionID string) SendOption {
	return func(c *sendConfig) {
		c.resume = sessionID
	}
}
