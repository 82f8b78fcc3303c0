package cursoragent

import (
	"context"
	"os"
	"strings"
	"time"
)

// EnvCredential is the environment variable the agent reads its API key
// from. When it is set the bridge passes nothing: the agent picks it up
// itself.
const EnvCredential = "CURSOR_API_KEY"

// defaultProbeTimeout bounds the login-status probe. The probe is a
// heuristic, not a gate; it must never stall a send for long.
const defaultProbeTimeout = 5 * time.Second

// AuthSource says which credential path a send will use.
type AuthSource string

const (
	AuthSourceEnvironment AuthSource = "environment"
	AuthSourceCLILogin    AuthSource = "cli-login"
	AuthSourceAPIKey      AuthSource = "api-key"
	AuthSourceNone        AuthSource = "none"
)

// AuthResult is the outcome of authentication resolution.
type AuthResult struct {
	Authenticated bool
	Source        AuthSource
	ExtraArgs     []string
}

// authResolver decides how the agent process should authenticate. The env
// lookup and the probe are injectable for tests; the bridge wires the real
// ones.
type authResolver struct {
	lookupEnv func(string) string
	probe     func(ctx context.Context) (*OneShotResult, error)
}

func newAuthResolver(candidates []string, cwd string, env []string, timeout time.Duration) *authResolver {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &authResolver{
		lookupEnv: os.Getenv,
		probe: func(ctx context.Context) (*OneShotResult, error) {
			return runOneShot(ctx, candidates, []string{"status"}, cwd, env, timeout)
		},
	}
}

// Resolve checks credential sources in strict precedence order and returns
// the first match. The probe is only consulted when the environment
// credential is absent.
func (r *authResolver) Resolve(ctx context.Context, apiKey string) AuthResult {
	if r.lookupEnv(EnvCredential) != "" {
		return AuthResult{Authenticated: true, Source: AuthSourceEnvironment}
	}

	if r.probeLoggedIn(ctx) {
		return AuthResult{Authenticated: true, Source: AuthSourceCLILogin}
	}

	if apiKey != "" {
		return AuthResult{
			Authenticated: true,
			Source:        AuthSourceAPIKey,
			ExtraArgs:     []string{"--api-key", apiKey},
		}
	}

	return AuthResult{Source: AuthSourceNone}
}

// probeLoggedIn classifies the status probe's combined output. The command
// does not reliably signal auth state, so an ambiguous result with a zero
// exit code is treated optimistically as logged in: better to let the real
// invocation fail with a clear error than to block a send on a heuristic.
func (r *authResolver) probeLoggedIn(ctx context.Context) bool {
	res, err := r.probe(ctx)
	if err != nil {
		return false
	}

	out := strings.ToLower(res.Output())
	switch {
	case strings.Contains(out, "not logged"):
		return false
	case strings.Contains(out, "logged in"), strings.Contains(out, "authenticated"):
		return true
	default:
		return res.ExitCode != nil && *res.ExitCode == 0
	}
}
