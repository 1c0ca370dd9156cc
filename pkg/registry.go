package harness

import (
	"context"
	"io/ioutil"
	"os"

	"github.com/cucumber/godog"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mumoshu/naemon-bdd/pkg/naemon"
)

// stepDef binds one scenario phrase to its handler.
type stepDef struct {
	Pattern string
	Handler interface{}
}

// stepDefinitions is the whole vocabulary in one table. godog matches
// phrases against it directly, there is no second dispatch layer behind
// the handlers.
func stepDefinitions(s *StepSet) []stepDef {
	return []stepDef{
		{`^I have naemon (.+) objects$`, s.AddObject},
		{`^I have naemon config (.+) set to (.+)$`, s.SetParameter},
		{`^I have an invalid naemon system configuration$`, s.InvalidSystemConfiguration},
		{`^I have an invalid naemon object configuration$`, s.InvalidObjectConfiguration},
		{`^I have directory (.+)$`, s.EnsureDirectory},
		{`^I write config to file$`, s.WriteConfigToFile},
		{`^I verify the naemon configuration$`, s.VerifyConfiguration},
		{`^config verification fail$`, s.AssertVerificationFails},
		{`^config verification pass$`, s.AssertVerificationPasses},
		{`^I start naemon$`, s.StartDaemon},
		{`^naemon should fail to start$`, s.AssertStartFails},
		{`^naemon should successfully start$`, s.AssertStartSucceeds},
	}
}

// Registry wires the step vocabulary and the scenario lifecycle into a
// godog scenario context. One Registry serves a whole suite run; the
// StepSet behind the registered handlers is re-pointed at a fresh
// ScenarioContext before every scenario.
type Registry struct {
	Config *Config

	// NewRunner overrides daemon construction. Tests inject recording
	// mocks here.
	NewRunner func(*Config) naemon.Runner

	steps *StepSet
}

func NewRegistry(cfg *Config) *Registry {
	return &Registry{Config: cfg, steps: &StepSet{}}
}

// RegisterSteps installs the vocabulary and the scenario hooks into sc.
// It has the signature godog.ScenarioInitializer expects.
func (r *Registry) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, scenario *godog.Scenario) (context.Context, error) {
		dir, err := ioutil.TempDir("", AppName+"-")
		if err != nil {
			return ctx, errors.Annotate(err, "creating scenario scratch directory")
		}

		var c *ScenarioContext
		if r.NewRunner != nil {
			c, err = NewScenarioContextWithRunner(r.Config, r.NewRunner(r.Config), dir)
		} else {
			c, err = NewScenarioContext(r.Config, dir)
		}
		if err != nil {
			os.RemoveAll(dir)
			return ctx, errors.Trace(err)
		}

		log.WithFields(log.Fields{"scenario": scenario.Name, "dir": dir}).Debug("scenario started")

		r.steps.Context = c
		return ctx, nil
	})

	sc.After(func(ctx context.Context, scenario *godog.Scenario, err error) (context.Context, error) {
		if r.steps.Context != nil {
			r.steps.Context.Teardown()
			r.steps.Context = nil
		}
		return ctx, nil
	})

	for _, def := range stepDefinitions(r.steps) {
		sc.Step(def.Pattern, def.Handler)
	}
}
