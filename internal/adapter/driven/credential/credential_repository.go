package credential

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode"

	"github.com/google/shlex"
	"go.uber.org/zap"

	"github.com/diillson/cloudability-export-go/internal/domain/entity"
	"github.com/diillson/cloudability-export-go/internal/domain/repository"
	"github.com/diillson/cloudability-export-go/internal/shared/types"
)

const (
	// DefaultCommandTimeout bounds the token command.
	DefaultCommandTimeout = 30 * time.Second
	// waitDelay caps how long Wait blocks on output pipes after the process is killed.
	waitDelay       = time.Second
	stderrExcerptSz = 200
)

// CredentialRepositoryImpl implementa o CredentialRepository.
type CredentialRepositoryImpl struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewCredentialRepository cria uma nova implementação do CredentialRepository.
func NewCredentialRepository(timeout time.Duration, logger *zap.Logger) repository.CredentialRepository {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &CredentialRepositoryImpl{timeout: timeout, logger: logger}
}

// Resolve retorna o token a partir do literal, da variável de ambiente ou do
// comando externo, nessa ordem de precedência.
func (r *CredentialRepositoryImpl) Resolve(ctx context.Context, source entity.TokenSource) (string, error) {
	var token string
	switch {
	case source.Token != "":
		r.logger.Debug("using token given on the command line")
		token = source.Token
	case source.EnvVar != "":
		r.logger.Debug("reading token from environment", zap.String("env_var", source.EnvVar))
		value, ok := os.LookupEnv(source.EnvVar)
		if !ok {
			return "", fmt.Errorf("%w: environment variable %s is not set", types.ErrCredential, source.EnvVar)
		}
		token = value
	case source.Command != "":
		out, err := r.runCommand(ctx, source.Command)
		if err != nil {
			return "", err
		}
		token = out
	default:
		return "", fmt.Errorf("%w: no cloudability token was provided", types.ErrCredential)
	}

	token = strings.TrimRightFunc(token, unicode.IsSpace)
	if token == "" {
		return "", fmt.Errorf("%w: resolved cloudability token is empty", types.ErrCredential)
	}
	return token, nil
}

func (r *CredentialRepositoryImpl) runCommand(ctx context.Context, command string) (string, error) {
	args, err := shlex.Split(command)
	if err != nil {
		return "", fmt.Errorf("%w: cannot parse token command: %w", types.ErrCredential, err)
	}
	if len(args) == 0 {
		return "", fmt.Errorf("%w: token command is empty", types.ErrCredential)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...) // nolint:gosec
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	r.logger.Debug("running token command", zap.String("program", args[0]))
	start := time.Now()
	err = cmd.Run()
	r.logger.Debug("token command finished", zap.Duration("elapsed", time.Since(start)), zap.Error(err))

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: token command %q timed out after %s", types.ErrCredential, args[0], r.timeout)
		}
		return "", fmt.Errorf("%w: token command %q failed: %w%s", types.ErrCredential, args[0], err, excerpt(stderr.String()))
	}
	return stdout.String(), nil
}

func excerpt(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	if len(stderr) > stderrExcerptSz {
		stderr = stderr[:stderrExcerptSz] + "..."
	}
	return ": " + stderr
}
