package cursoragent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func stubResolver(envKey string, probe func(ctx context.Context) (*OneShotResult, error)) *authResolver {
	return &authResolver{
		lookupEnv: func(name string) string {
			if name == EnvCredential {
				return envKey
			}
			return ""
		},
		probe: probe,
	}
}

func TestResolve_EnvCredentialWins(t *testing.T) {
	probeCalled := false
	r := stubResolver("env-key", func(ctx context.Context) (*OneShotResult, error) {
		probeCalled = true
		return &OneShotResult{ExitCode: intPtr(0)}, nil
	})

	res := r.Resolve(context.Background(), "configured-key")
	assert.True(t, res.Authenticated)
	assert.Equal(t, AuthSourceEnvironment, res.Source)
	assert.Empty(t, res.ExtraArgs, "env credential is picked up by the agent itself")
	assert.False(t, probeCalled, "probe must not run when the env credential is set")
}

func TestResolve_CLILoginBeatsAPIKey(t *testing.T) {
	r := stubResolver("", func(ctx context.Context) (*OneShotResult, error) {
		return &OneShotResult{ExitCode: intPtr(0), Stdout: "Logged in as dev@example.com"}, nil
	})

	res := r.Resolve(context.Background(), "configured-key")
	assert.True(t, res.Authenticated)
	assert.Equal(t, AuthSourceCLILogin, res.Source)
	assert.Empty(t, res.ExtraArgs)
}

func TestResolve_APIKeyFallback(t *testing.T) {
	r := stubResolver("", func(ctx context.Context) (*OneShotResult, error) {
		return &OneShotResult{ExitCode: intPtr(1), Stdout: "Not logged in"}, nil
	})

	res := r.Resolve(context.Background(), "configured-key")
	assert.True(t, res.Authenticated)
	assert.Equal(t, AuthSourceAPIKey, res.Source)
	assert.Equal(t, []string{"--api-key", "configured-key"}, res.ExtraArgs)
}

func TestResolve_NothingAvailable(t *testing.T) {
	r := stubResolver("", func(ctx context.Context) (*OneShotResult, error) {
		return nil, errors.New("binary missing")
	})

	res := r.Resolve(context.Background(), "")
	assert.False(t, res.Authenticated)
	assert.Equal(t, AuthSourceNone, res.Source)
}

func TestProbeLoggedIn_Classification(t *testing.T) {
	cases := []struct {
		name   string
		result *OneShotResult
		err    error
		want   bool
	}{
		{"explicit not logged in", &OneShotResult{ExitCode: intPtr(0), Stdout: "Not logged in"}, nil, false},
		{"explicit logged in", &OneShotResult{ExitCode: intPtr(0), Stdout: "logged in as someone"}, nil, true},
		{"authenticated wording", &OneShotResult{ExitCode: intPtr(0), Stderr: "Authenticated via browser"}, nil, true},
		{"ambiguous zero exit is optimistic", &OneShotResult{ExitCode: intPtr(0), Stdout: "cursor-agent v1.2"}, nil, true},
		{"ambiguous nonzero exit", &OneShotResult{ExitCode: intPtr(2), Stdout: "usage: ..."}, nil, false},
		{"killed probe is ambiguous with no exit code", &OneShotResult{Signal: "SIGKILL"}, nil, false},
		{"probe error", nil, errors.New("spawn failed"), false},
		{"negation beats affirmation when both appear", &OneShotResult{ExitCode: intPtr(0), Stdout: "Not logged in. Run login to get logged in."}, nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := stubResolver("", func(ctx context.Context) (*OneShotResult, error) {
				return tc.result, tc.err
			})
			assert.Equal(t, tc.want, r.probeLoggedIn(context.Background()))
		})
	}
}

func TestNewAuthResolver_DefaultTimeout(t *testing.T) {
	r := newAuthResolver([]string{"cursor-agent"}, "", nil, 0)
	require.NotNil(t, r.probe)
	require.NotNil(t, r.lookupEnv)
}
