package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bookshelf-dev/gitbook-cli/internal/branding"
	"github.com/bookshelf-dev/gitbook-cli/internal/manifest"
	"go.uber.org/zap"
)

// processCommand runs a manifest entry as a child process in the version root.
type processCommand struct {
	spec    manifest.CommandSpec
	version string
	root    string

	stdout io.Writer
	stderr io.Writer
	logger *zap.Logger
}

func (p *processCommand) Name() string        { return p.spec.Name }
func (p *processCommand) Description() string { return p.spec.Description }

// Execute appends args and rendered kwargs to the manifest's run line and
// waits for the process. A non-zero exit is reported through Result.ExitCode,
// not as an error.
func (p *processCommand) Execute(ctx context.Context, args []string, kwargs map[string]string) (*Result, error) {
	prog, err := p.program()
	if err != nil {
		return nil, err
	}

	argv := append([]string{}, p.spec.Run[1:]...)
	argv = append(argv, args...)
	argv = append(argv, renderKwargs(kwargs)...)

	cmd := exec.CommandContext(ctx, prog, argv...)
	cmd.Dir = p.root
	cmd.Env = p.environ()

	stdout := p.stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := p.stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = io.MultiWriter(stdout, &stdoutBuf)
	cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)

	p.logger.Debug("executing command",
		zap.String("command", p.spec.Name),
		zap.String("program", prog),
		zap.Strings("args", argv),
		zap.String("dir", p.root))

	err = cmd.Run()

	res := &Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("executing %s: %w", p.spec.Name, err)
	}
	return res, nil
}

// program resolves the executable. Paths relative to the version root
// ("./bin/gitbook.js", "bin/gitbook.js") are anchored there; bare names are
// looked up on PATH.
func (p *processCommand) program() (string, error) {
	prog := p.spec.Run[0]
	if strings.ContainsRune(prog, '/') || strings.ContainsRune(prog, filepath.Separator) {
		if !filepath.IsAbs(prog) {
			prog = filepath.Join(p.root, filepath.FromSlash(prog))
		}
		if _, err := os.Stat(prog); err != nil {
			return "", fmt.Errorf("command %s: program not found: %w", p.spec.Name, err)
		}
		return prog, nil
	}
	resolved, err := exec.LookPath(prog)
	if err != nil {
		return "", fmt.Errorf("command %s requires %s: %w", p.spec.Name, prog, err)
	}
	return resolved, nil
}

// environ inherits the current environment and adds the version variables
// and the manifest's env entries.
func (p *processCommand) environ() []string {
	env := os.Environ()
	env = setEnv(env, branding.EnvVar("VERSION"), p.version)
	env = setEnv(env, branding.EnvVar("ROOT"), p.root)

	keys := make([]string, 0, len(p.spec.Env))
	for k := range p.spec.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = setEnv(env, k, p.spec.Env[k])
	}
	return env
}

// renderKwargs turns options into "--key=value" flags sorted by key. A value
// of "true" renders as a bare "--key".
func renderKwargs(kwargs map[string]string) []string {
	keys := make([]string, 0, len(kwargs))
	for k := range kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if kwargs[k] == "true" {
			out = append(out, "--"+k)
			continue
		}
		out = append(out, "--"+k+"="+kwargs[k])
	}
	return out
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
