package naemon

import (
	"bufio"
	"os/exec"
	"syscall"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
)

// Runner starts the monitoring daemon in one of its two invocation modes
// against a main configuration file and reports the process exit code. A
// non-zero code is an outcome, not an error: the error return is reserved
// for failures to launch or wait on the process at all.
type Runner interface {
	Verify(mainCfg string) (int, error)
	Start(mainCfg string) (int, error)
}

// Daemon runs a real naemon executable.
type Daemon struct {
	// Executable is the path of the naemon binary, already resolved
	// against the working directory.
	Executable string
	// ExtraArgs are inserted between --allow-root and the mode flag.
	ExtraArgs []string
	// Dir, when non-empty, becomes the process working directory.
	Dir string
}

// Verify runs the configuration check. Naemon parses the configuration,
// reports problems and exits without daemonizing.
func (d *Daemon) Verify(mainCfg string) (int, error) {
	return d.run("-v", mainCfg)
}

// Start launches the daemon. Naemon forks into the background, so the
// parent process observed here exits promptly in both outcomes.
func (d *Daemon) Start(mainCfg string) (int, error) {
	return d.run("-d", mainCfg)
}

func (d *Daemon) run(mode string, mainCfg string) (int, error) {
	args := []string{"--allow-root"}
	args = append(args, d.ExtraArgs...)
	args = append(args, mode, mainCfg)

	ctx := log.WithFields(log.Fields{"cmd": append([]string{d.Executable}, args...)})

	ctx.Debug("naemon started")

	cmd := exec.Command(d.Executable, args...)
	if d.Dir != "" {
		cmd.Dir = d.Dir
	}

	cmdReader, err := cmd.StdoutPipe()
	if err != nil {
		return -1, errors.Annotate(err, "creating stdout pipe for naemon")
	}

	errReader, err := cmd.StderrPipe()
	if err != nil {
		return -1, errors.Annotate(err, "creating stderr pipe for naemon")
	}

	if err := cmd.Start(); err != nil {
		return -1, errors.Annotatef(err, "starting %s", d.Executable)
	}

	// Receive stdout and stderr

	channels := struct {
		Stdout chan string
		Stderr chan string
	}{
		Stdout: make(chan string),
		Stderr: make(chan string),
	}

	scanner := bufio.NewScanner(cmdReader)
	go func() {
		defer func() {
			close(channels.Stdout)
		}()
		for scanner.Scan() {
			channels.Stdout <- scanner.Text()
		}
	}()

	errScanner := bufio.NewScanner(errReader)
	go func() {
		defer func() {
			close(channels.Stderr)
		}()
		for errScanner.Scan() {
			channels.Stderr <- errScanner.Text()
		}
	}()

	stdoutEnds := false
	stderrEnds := false

	stdoutlog := log.WithFields(log.Fields{"stream": "stdout"})
	stderrlog := log.WithFields(log.Fields{"stream": "stderr"})

	// Coordinating stdout/stderr in this single place to not screw up message ordering
	for {
		select {
		case text, ok := <-channels.Stdout:
			if ok {
				stdoutlog.Info(text)
			} else {
				stdoutEnds = true
			}
		case text, ok := <-channels.Stderr:
			if ok {
				stderrlog.Info(text)
			} else {
				stderrEnds = true
			}
		}
		if stdoutEnds && stderrEnds {
			break
		}
	}

	var waitStatus syscall.WaitStatus
	err = cmd.Wait()

	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			waitStatus = exitError.Sys().(syscall.WaitStatus)
			ctx.Debugf("naemon finished with status: %d", waitStatus.ExitStatus())
			return waitStatus.ExitStatus(), nil
		}
		return -1, errors.Annotate(err, "waiting for naemon")
	}

	waitStatus = cmd.ProcessState.Sys().(syscall.WaitStatus)
	ctx.Debugf("naemon finished with status: %d", waitStatus.ExitStatus())

	return waitStatus.ExitStatus(), nil
}
