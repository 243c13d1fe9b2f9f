package credential

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diillson/cloudability-export-go/internal/domain/entity"
	"github.com/diillson/cloudability-export-go/internal/shared/types"
)

func newRepo(timeout time.Duration) *CredentialRepositoryImpl {
	return NewCredentialRepository(timeout, zap.NewNop()).(*CredentialRepositoryImpl)
}

func TestResolve_Command(t *testing.T) {
	token, err := newRepo(0).Resolve(context.Background(), entity.TokenSource{Command: "echo 'secret token'"})
	require.NoError(t, err)
	assert.Equal(t, "secret token", token)
}

func TestResolve_Precedence(t *testing.T) {
	t.Setenv("CLOUDABILITY_TEST_TOKEN", "from-env\n")
	repo := newRepo(0)

	token, err := repo.Resolve(context.Background(), entity.TokenSource{Token: "literal", EnvVar: "CLOUDABILITY_TEST_TOKEN", Command: "echo cmd"})
	require.NoError(t, err)
	assert.Equal(t, "literal", token)

	token, err = repo.Resolve(context.Background(), entity.TokenSource{EnvVar: "CLOUDABILITY_TEST_TOKEN", Command: "echo cmd"})
	require.NoError(t, err)
	assert.Equal(t, "from-env", token)
}

func TestResolve_Failures(t *testing.T) {
	tests := []struct {
		name   string
		source entity.TokenSource
	}{
		{"non-zero exit", entity.TokenSource{Command: "false"}},
		{"empty output", entity.TokenSource{Command: "true"}},
		{"unknown program", entity.TokenSource{Command: "cloudability-export-no-such-binary"}},
		{"unbalanced quotes", entity.TokenSource{Command: "echo 'oops"}},
		{"unset env var", entity.TokenSource{EnvVar: "CLOUDABILITY_TEST_UNSET_VAR"}},
		{"no source", entity.TokenSource{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newRepo(0).Resolve(context.Background(), tt.source)
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrCredential), "got %v", err)
		})
	}
}

func TestResolve_StderrInError(t *testing.T) {
	_, err := newRepo(0).Resolve(context.Background(), entity.TokenSource{Command: `sh -c "echo no such secret >&2; exit 3"`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such secret")
}

func TestResolve_Timeout(t *testing.T) {
	start := time.Now()
	_, err := newRepo(100*time.Millisecond).Resolve(context.Background(), entity.TokenSource{Command: "sleep 5"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrCredential))
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 3*time.Second)
}
