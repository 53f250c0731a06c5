package shell

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/open-edge-platform/rpm-composer/internal/utils/logger"
)

// Command describes one external program invocation. Args are passed to
// the program as-is, without a shell in between.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// String renders the command line for logs and error messages.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// The exec functions are variables so tests can substitute fakes for the
// workspace toolchain.
var (
	ExecCmd           = execCmd
	ExecCmdWithStream = execCmdWithStream
)

// IsCommandExist reports whether name resolves to an executable on PATH.
func IsCommandExist(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func newCmd(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = nil
	return cmd
}

// execCmd runs the command and returns its stdout. Stderr is logged at
// debug level and included in the returned error on failure.
func execCmd(ctx context.Context, c Command) (string, error) {
	log := logger.Logger()
	log.Debugf("Exec: [%s]", c)

	var stdout, stderr bytes.Buffer
	cmd := newCmd(ctx, c)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errStr := strings.TrimSpace(stderr.String()); errStr != "" {
		log.Debug(errStr)
	}
	if err != nil {
		if errStr := strings.TrimSpace(stderr.String()); errStr != "" {
			return stdout.String(), fmt.Errorf("failed to exec %s: %w: %s", c, err, errStr)
		}
		return stdout.String(), fmt.Errorf("failed to exec %s: %w", c, err)
	}
	return stdout.String(), nil
}

// MaxLineSize is the longest output line forwarded by ExecCmdWithStream.
const MaxLineSize = 10 * 1024 * 1024

// forwardLines emits each non-empty line of r. When a line exceeds
// MaxLineSize the rest of r is drained so the writer never blocks.
func forwardLines(r io.Reader, emit func(args ...interface{})) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			emit(line)
		}
	}
	if err := scanner.Err(); err != nil {
		_, _ = io.Copy(io.Discard, r)
		return err
	}
	return nil
}

// execCmdWithStream runs the command and forwards every stdout and stderr
// line to the logger while it runs. It returns once the process exits.
func execCmdWithStream(ctx context.Context, c Command) error {
	log := logger.Logger()
	log.Debugf("Exec: [%s]", c)

	cmd := newCmd(ctx, c)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe for command %s: %w", c, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to get stderr pipe for command %s: %w", c, err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start command %s: %w", c, err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		scanErr error
	)
	wg.Add(2)
	forward := func(r io.Reader) {
		defer wg.Done()
		if err := forwardLines(r, log.Info); err != nil {
			mu.Lock()
			if scanErr == nil {
				scanErr = err
			}
			mu.Unlock()
		}
	}
	go forward(stdout)
	go forward(stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("failed to wait for command %s: %w", c, err)
	}
	if scanErr != nil {
		return fmt.Errorf("failed to read output of command %s: %w", c, scanErr)
	}
	return nil
}
