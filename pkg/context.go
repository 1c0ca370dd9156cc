package harness

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mumoshu/naemon-bdd/pkg/api/config"
	"github.com/mumoshu/naemon-bdd/pkg/naemon"
)

const (
	mainConfigFilename   = "naemon.cfg"
	objectConfigFilename = "objects.cfg"
)

// ScenarioContext is the mutable state of one running scenario: the two
// configuration models, the scratch directory the generated files live in,
// the runner driving the daemon and the exit code of the last invocation.
// A fresh context is built for every scenario so nothing leaks between
// them.
type ScenarioContext struct {
	Objects  config.ObjectConfig
	Settings config.SystemConfig
	Runner   naemon.Runner
	Config   *Config
	Dir      string

	// ReturnCode holds the exit code of the most recent verify or start,
	// last write wins.
	ReturnCode int
}

// NewScenarioContext builds a context running the configured daemon
// binary. dir is the scenario scratch directory and must exist.
func NewScenarioContext(cfg *Config, dir string) (*ScenarioContext, error) {
	runner := &naemon.Daemon{
		Executable: cfg.Executable(),
		ExtraArgs:  cfg.ExtraArgs,
		Dir:        cfg.WorkDir,
	}
	return NewScenarioContextWithRunner(cfg, runner, dir)
}

// NewScenarioContextWithRunner is NewScenarioContext with the daemon
// invocation swapped out, which is how step handlers get tested.
func NewScenarioContextWithRunner(cfg *Config, runner naemon.Runner, dir string) (*ScenarioContext, error) {
	c := &ScenarioContext{
		Objects:  naemon.NewObjectConfig(objectConfigFilename),
		Settings: naemon.NewSystemConfig(mainConfigFilename),
		Runner:   runner,
		Config:   cfg,
		Dir:      dir,
	}

	if err := c.seed(); err != nil {
		return nil, errors.Trace(err)
	}

	return c, nil
}

// seed installs the minimal main configuration and object templates a
// pristine daemon needs to pass verification, so scenarios only describe
// what they are about.
func (c *ScenarioContext) seed() error {
	settings := [][2]string{
		{"cfg_file", c.ObjectConfigPath()},
		{"log_file", filepath.Join(c.Dir, "naemon.log")},
		{"check_result_path", filepath.Join(c.Dir, "checkresults")},
		{"lock_file", filepath.Join(c.Dir, "naemon.lock")},
	}
	for _, kv := range settings {
		if err := c.Settings.SetVar(kv[0], kv[1]); err != nil {
			return errors.Trace(err)
		}
	}

	hostTemplate := config.NewTable([][]string{
		{"name", "register", "max_check_attempts", "check_interval", "retry_interval", "check_period", "notification_interval", "notification_period"},
		{"default-host", "0", "3", "5", "1", "24x7", "60", "24x7"},
	})
	if err := c.Objects.AddObject("host", hostTemplate); err != nil {
		return errors.Trace(err)
	}

	timeperiod := config.NewTable([][]string{
		{"timeperiod_name", "alias", "sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"},
		{"24x7", "24 Hours A Day, 7 Days A Week", "00:00-24:00", "00:00-24:00", "00:00-24:00", "00:00-24:00", "00:00-24:00", "00:00-24:00", "00:00-24:00"},
	})
	if err := c.Objects.AddObject("timeperiod", timeperiod); err != nil {
		return errors.Trace(err)
	}

	command := config.NewTable([][]string{
		{"command_name", "command_line"},
		{"check-host-alive", "/bin/true"},
	})
	if err := c.Objects.AddObject("command", command); err != nil {
		return errors.Trace(err)
	}

	return nil
}

// MainConfigPath is where the system configuration gets written, and what
// the daemon is pointed at.
func (c *ScenarioContext) MainConfigPath() string {
	return filepath.Join(c.Dir, c.Settings.Filename())
}

// ObjectConfigPath is where the object configuration gets written. The
// seeded cfg_file variable references it.
func (c *ScenarioContext) ObjectConfigPath() string {
	return filepath.Join(c.Dir, c.Objects.Filename())
}

// EnsureDirectory creates name, resolving relative names under the
// scenario scratch directory.
func (c *ScenarioContext) EnsureDirectory(name string) error {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.Dir, path)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Annotatef(err, "creating directory %s", name)
	}
	return nil
}

// Teardown stops a daemon the scenario may have left behind and removes
// the scratch directory. Failures are logged, not returned, since there
// is nothing a caller could do about them between scenarios.
func (c *ScenarioContext) Teardown() {
	if pid, err := c.daemonPid(); err == nil {
		if err := syscall.Kill(pid, syscall.SIGTERM); err == nil {
			log.Debugf("scenario teardown stopped naemon pid %d", pid)
		}
	}

	if c.Dir != "" {
		if err := os.RemoveAll(c.Dir); err != nil {
			log.Warnf("scenario teardown left %s behind: %v", c.Dir, err)
		}
	}
}

func (c *ScenarioContext) daemonPid() (int, error) {
	lock, ok := c.Settings.Get("lock_file")
	if !ok {
		return 0, errors.New("lock_file is not set")
	}
	content, err := ioutil.ReadFile(lock)
	if err != nil {
		return 0, errors.Trace(err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0, errors.Annotatef(err, "parsing pid from %s", lock)
	}
	return pid, nil
}
