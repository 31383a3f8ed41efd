package os

import (
	"bytes"
	"context"
	"fmt"
	"github.com/rs/zerolog/log"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Cmd is a model of the OS command.
type Cmd struct {
	Name    string
	Args    []string
	Env     []string
	Dir     string
	Log     bool
	Timeout time.Duration
}

// Exec a system command and get the system output; the output captured before a failure is returned with the error.
func Exec(ctx context.Context, cmd Cmd) (string, error) {
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}
	osCmd := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	osCmd.Dir = cmd.Dir
	osCmd.Env = append(os.Environ(), cmd.Env...)
	if cmd.Log {
		log.Info().Str("dir", cmd.Dir).Msgf("Exec cmd: %s %s", cmd.Name, strings.Join(cmd.Args, " "))
	}
	var out bytes.Buffer
	var stderr bytes.Buffer
	osCmd.Stdout = &out
	osCmd.Stderr = &stderr
	err := osCmd.Run()
	if err != nil {
		return out.String(), fmt.Errorf("%w; output: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out.String(), nil
}

// LookPath resolves the executable in the PATH unless it is a path already.
func LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
