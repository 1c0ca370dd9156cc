package harness

import (
	"github.com/cucumber/godog"
	"github.com/juju/errors"

	"github.com/mumoshu/naemon-bdd/pkg/api/config"
)

// StepSet binds the scenario vocabulary to one ScenarioContext. Every
// handler is an ordinary method, so fixtures compose by plain calls
// instead of re-dispatching phrases through the runner.
type StepSet struct {
	Context *ScenarioContext
}

func NewStepSet(c *ScenarioContext) *StepSet {
	return &StepSet{Context: c}
}

// AddObject feeds each data row into the object model, handing over the
// full table once per row. The model suppresses the duplicates this
// produces.
func (s *StepSet) AddObject(objectType string, table *godog.Table) error {
	if table == nil || len(table.Rows) == 0 {
		return errors.Errorf("%s objects require a table with a header row", objectType)
	}
	for range table.Rows[1:] {
		if err := s.Context.Objects.AddObject(objectType, table); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// SetParameter records a main configuration variable. Values stay raw
// strings, the daemon is the one interpreting them.
func (s *StepSet) SetParameter(name string, value string) error {
	return errors.Trace(s.Context.Settings.SetVar(name, value))
}

// InvalidSystemConfiguration injects a main configuration variable no
// daemon release understands, guaranteeing verification failure.
func (s *StepSet) InvalidSystemConfiguration() error {
	return s.SetParameter("invalid_param", "x")
}

// InvalidObjectConfiguration adds a host whose check_command is not
// defined anywhere in the object configuration.
func (s *StepSet) InvalidObjectConfiguration() error {
	table := config.NewTable([][]string{
		{"use", "host_name", "address", "check_command"},
		{"default-host", "invalid_host", "127.0.0.1", "non_existing"},
	})
	return s.AddObject("host", table)
}

func (s *StepSet) EnsureDirectory(name string) error {
	return s.Context.EnsureDirectory(name)
}

// WriteConfigToFile writes both models into the scratch directory and
// makes sure the check result spool exists. Later steps call this as a
// precondition, so it must stay safe to repeat.
func (s *StepSet) WriteConfigToFile() error {
	if err := s.EnsureDirectory("checkresults"); err != nil {
		return errors.Trace(err)
	}
	if err := s.Context.Objects.WriteToFile(s.Context.ObjectConfigPath()); err != nil {
		return errors.Trace(err)
	}
	if err := s.Context.Settings.WriteToFile(s.Context.MainConfigPath()); err != nil {
		return errors.Trace(err)
	}
	return nil
}

// VerifyConfiguration rewrites the configuration files and has the daemon
// check them, recording the exit code.
func (s *StepSet) VerifyConfiguration() error {
	if err := s.WriteConfigToFile(); err != nil {
		return errors.Trace(err)
	}

	code, err := s.Context.Runner.Verify(s.Context.MainConfigPath())
	if err != nil {
		return errors.Annotate(err, "verifying naemon configuration")
	}
	s.Context.ReturnCode = code

	return nil
}

// StartDaemon rewrites the configuration files and launches the daemon,
// recording the exit code of the forking parent.
func (s *StepSet) StartDaemon() error {
	if err := s.WriteConfigToFile(); err != nil {
		return errors.Trace(err)
	}

	code, err := s.Context.Runner.Start(s.Context.MainConfigPath())
	if err != nil {
		return errors.Annotate(err, "starting naemon")
	}
	s.Context.ReturnCode = code

	return nil
}

// AssertVerificationFails reruns verification and requires a non-zero
// exit code.
func (s *StepSet) AssertVerificationFails() error {
	if err := s.VerifyConfiguration(); err != nil {
		return errors.Trace(err)
	}
	if s.Context.ReturnCode == 0 {
		return errors.Errorf("Return code was %d", s.Context.ReturnCode)
	}
	return nil
}

// AssertVerificationPasses reruns verification and requires exit code 0.
func (s *StepSet) AssertVerificationPasses() error {
	if err := s.VerifyConfiguration(); err != nil {
		return errors.Trace(err)
	}
	if s.Context.ReturnCode != 0 {
		return errors.Errorf("Return code was not 0 (got %d)", s.Context.ReturnCode)
	}
	return nil
}

// AssertStartFails starts the daemon and requires a non-zero exit code.
func (s *StepSet) AssertStartFails() error {
	if err := s.StartDaemon(); err != nil {
		return errors.Trace(err)
	}
	if s.Context.ReturnCode == 0 {
		return errors.Errorf("Return code was %d", s.Context.ReturnCode)
	}
	return nil
}

// AssertStartSucceeds starts the daemon and requires exit code 0.
func (s *StepSet) AssertStartSucceeds() error {
	if err := s.StartDaemon(); err != nil {
		return errors.Trace(err)
	}
	if s.Context.ReturnCode != 0 {
		return errors.Errorf("Return code was not 0 (got %d)", s.Context.ReturnCode)
	}
	return nil
}
