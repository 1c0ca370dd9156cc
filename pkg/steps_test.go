package harness

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/davecgh/go-spew/spew"
	"github.com/kr/pretty"

	"github.com/mumoshu/naemon-bdd/pkg/api/config"
	"github.com/mumoshu/naemon-bdd/pkg/naemon"
)

type testHelper struct {
	t *testing.T
}

func (h testHelper) AssertEquals(actual interface{}, expected interface{}) {
	h.t.Helper()

	if !reflect.DeepEqual(actual, expected) {
		h.t.Errorf("actual value %s doesn't match expected value %s\ndiff=%s", spew.Sdump(actual), spew.Sdump(expected), strings.Join(pretty.Diff(actual, expected), "\n"))
	}
}

func newTestStepSet(t *testing.T) (*StepSet, *naemon.MockRunner) {
	t.Helper()

	cfg := &Config{ExecPath: "naemon", WorkDir: "."}
	runner := &naemon.MockRunner{}

	c, err := NewScenarioContextWithRunner(cfg, runner, t.TempDir())
	if err != nil {
		t.Fatalf("%v", err)
	}

	return NewStepSet(c), runner
}

func hostTable(names ...string) *godog.Table {
	rows := [][]string{{"use", "host_name", "address"}}
	for i, name := range names {
		rows = append(rows, []string{"default-host", name, fmt.Sprintf("192.0.2.%d", i+1)})
	}
	return config.NewTable(rows)
}

func TestWriteConfigToFile(t *testing.T) {
	s, _ := newTestStepSet(t)

	if err := s.AddObject("host", hostTable("web01")); err != nil {
		t.Fatalf("%v", err)
	}
	if err := s.SetParameter("event_broker_options", "-1"); err != nil {
		t.Fatalf("%v", err)
	}

	if err := s.WriteConfigToFile(); err != nil {
		t.Fatalf("%v", err)
	}

	objects, err := ioutil.ReadFile(s.Context.ObjectConfigPath())
	if err != nil {
		t.Fatalf("%v", err)
	}
	for _, want := range []string{"define host {", "host_name web01"} {
		if !strings.Contains(string(objects), want) {
			t.Errorf("object config doesn't contain %q:\n%s", want, objects)
		}
	}

	settings, err := ioutil.ReadFile(s.Context.MainConfigPath())
	if err != nil {
		t.Fatalf("%v", err)
	}
	for _, want := range []string{
		fmt.Sprintf("cfg_file=%s\n", s.Context.ObjectConfigPath()),
		"event_broker_options=-1\n",
	} {
		if !strings.Contains(string(settings), want) {
			t.Errorf("system config doesn't contain %q:\n%s", want, settings)
		}
	}

	spool, err := os.Stat(filepath.Join(s.Context.Dir, "checkresults"))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !spool.IsDir() {
		t.Error("checkresults is expected to be a directory")
	}
}

func TestSeededConfiguration(t *testing.T) {
	s, _ := newTestStepSet(t)

	if err := s.WriteConfigToFile(); err != nil {
		t.Fatalf("%v", err)
	}

	objects, err := ioutil.ReadFile(s.Context.ObjectConfigPath())
	if err != nil {
		t.Fatalf("%v", err)
	}
	for _, want := range []string{
		"name default-host",
		"register 0",
		"timeperiod_name 24x7",
		"command_name check-host-alive",
	} {
		if !strings.Contains(string(objects), want) {
			t.Errorf("seeded object config doesn't contain %q:\n%s", want, objects)
		}
	}

	settings, err := ioutil.ReadFile(s.Context.MainConfigPath())
	if err != nil {
		t.Fatalf("%v", err)
	}
	// cfg_file is the first seeded variable and must stay first so the
	// object file is read before anything references its contents.
	first := fmt.Sprintf("cfg_file=%s\n", s.Context.ObjectConfigPath())
	if !strings.HasPrefix(string(settings), first) {
		t.Errorf("system config doesn't start with %q:\n%s", first, settings)
	}
	if !strings.Contains(string(settings), "lock_file=") {
		t.Errorf("system config doesn't set lock_file:\n%s", settings)
	}
}

func TestAddObjectSuppressesRepeatedRows(t *testing.T) {
	s, _ := newTestStepSet(t)

	if err := s.AddObject("host", hostTable("web01", "web02")); err != nil {
		t.Fatalf("%v", err)
	}

	if err := s.WriteConfigToFile(); err != nil {
		t.Fatalf("%v", err)
	}

	objects, err := ioutil.ReadFile(s.Context.ObjectConfigPath())
	if err != nil {
		t.Fatalf("%v", err)
	}
	for _, name := range []string{"host_name web01", "host_name web02"} {
		if got := strings.Count(string(objects), name); got != 1 {
			t.Errorf("%q appears %d times, expected once:\n%s", name, got, objects)
		}
	}
}

func TestVerifyConfigurationRecordsReturnCode(t *testing.T) {
	s, runner := newTestStepSet(t)
	runner.VerifyCode = 2

	if err := s.VerifyConfiguration(); err != nil {
		t.Fatalf("%v", err)
	}
	if s.Context.ReturnCode != 2 {
		t.Errorf("unexpected return code %d", s.Context.ReturnCode)
	}

	// Verification is repeatable and rewrites the configuration each time.
	if err := s.VerifyConfiguration(); err != nil {
		t.Fatalf("%v", err)
	}

	h := testHelper{t: t}
	h.AssertEquals(runner.Calls, []naemon.MockCall{
		{Mode: "-v", MainCfg: s.Context.MainConfigPath()},
		{Mode: "-v", MainCfg: s.Context.MainConfigPath()},
	})
}

func TestVerifyConfigurationPropagatesRunnerError(t *testing.T) {
	s, runner := newTestStepSet(t)
	runner.Err = fmt.Errorf("exec format error")

	if err := s.VerifyConfiguration(); err == nil {
		t.Fatal("expected an error but got none")
	}
}

func TestAssertVerificationFails(t *testing.T) {
	s, runner := newTestStepSet(t)

	runner.VerifyCode = 0
	err := s.AssertVerificationFails()
	if err == nil {
		t.Fatal("expected an error but got none")
	}
	if !strings.Contains(err.Error(), "Return code was 0") {
		t.Errorf("unexpected error message: %v", err)
	}

	runner.VerifyCode = 2
	if err := s.AssertVerificationFails(); err != nil {
		t.Errorf("%v", err)
	}
}

func TestAssertVerificationPasses(t *testing.T) {
	s, runner := newTestStepSet(t)

	runner.VerifyCode = 2
	err := s.AssertVerificationPasses()
	if err == nil {
		t.Fatal("expected an error but got none")
	}
	if !strings.Contains(err.Error(), "Return code was not 0 (got 2)") {
		t.Errorf("unexpected error message: %v", err)
	}

	runner.VerifyCode = 0
	if err := s.AssertVerificationPasses(); err != nil {
		t.Errorf("%v", err)
	}
}

func TestAssertStartFails(t *testing.T) {
	s, runner := newTestStepSet(t)

	runner.StartCode = 0
	err := s.AssertStartFails()
	if err == nil {
		t.Fatal("expected an error but got none")
	}
	if !strings.Contains(err.Error(), "Return code was 0") {
		t.Errorf("unexpected error message: %v", err)
	}

	runner.StartCode = 1
	if err := s.AssertStartFails(); err != nil {
		t.Errorf("%v", err)
	}

	h := testHelper{t: t}
	h.AssertEquals(runner.Calls, []naemon.MockCall{
		{Mode: "-d", MainCfg: s.Context.MainConfigPath()},
		{Mode: "-d", MainCfg: s.Context.MainConfigPath()},
	})
}

func TestAssertStartSucceeds(t *testing.T) {
	s, runner := newTestStepSet(t)

	runner.StartCode = 1
	err := s.AssertStartSucceeds()
	if err == nil {
		t.Fatal("expected an error but got none")
	}
	if !strings.Contains(err.Error(), "Return code was not 0 (got 1)") {
		t.Errorf("unexpected error message: %v", err)
	}

	runner.StartCode = 0
	if err := s.AssertStartSucceeds(); err != nil {
		t.Errorf("%v", err)
	}
}

func TestInvalidSystemConfiguration(t *testing.T) {
	s, _ := newTestStepSet(t)

	if err := s.InvalidSystemConfiguration(); err != nil {
		t.Fatalf("%v", err)
	}

	value, ok := s.Context.Settings.Get("invalid_param")
	if !ok {
		t.Fatal("invalid_param is expected to be set")
	}
	if value != "x" {
		t.Errorf("unexpected value: %s", value)
	}
}

func TestInvalidObjectConfiguration(t *testing.T) {
	s, _ := newTestStepSet(t)

	if err := s.InvalidObjectConfiguration(); err != nil {
		t.Fatalf("%v", err)
	}
	if err := s.WriteConfigToFile(); err != nil {
		t.Fatalf("%v", err)
	}

	objects, err := ioutil.ReadFile(s.Context.ObjectConfigPath())
	if err != nil {
		t.Fatalf("%v", err)
	}
	for _, want := range []string{"host_name invalid_host", "check_command non_existing"} {
		if !strings.Contains(string(objects), want) {
			t.Errorf("object config doesn't contain %q:\n%s", want, objects)
		}
	}
}

func TestEnsureDirectory(t *testing.T) {
	s, _ := newTestStepSet(t)

	if err := s.EnsureDirectory("archives"); err != nil {
		t.Fatalf("%v", err)
	}

	info, err := os.Stat(filepath.Join(s.Context.Dir, "archives"))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !info.IsDir() {
		t.Error("archives is expected to be a directory")
	}

	// Repeating the step must not fail.
	if err := s.EnsureDirectory("archives"); err != nil {
		t.Errorf("%v", err)
	}
}

func TestTeardownRemovesScratchDir(t *testing.T) {
	s, _ := newTestStepSet(t)

	if err := s.WriteConfigToFile(); err != nil {
		t.Fatalf("%v", err)
	}

	// A stale lock file naming a pid that cannot exist must not break
	// teardown.
	lock, ok := s.Context.Settings.Get("lock_file")
	if !ok {
		t.Fatal("lock_file is expected to be set")
	}
	if err := ioutil.WriteFile(lock, []byte("999999999\n"), 0644); err != nil {
		t.Fatalf("%v", err)
	}

	s.Context.Teardown()

	if _, err := os.Stat(s.Context.Dir); !os.IsNotExist(err) {
		t.Errorf("scratch directory %s is expected to be removed", s.Context.Dir)
	}
}
