package run

import (
	"os"
	"strings"

	"github.com/cucumber/godog"
	"github.com/cucumber/godog/colors"
	"github.com/sirupsen/logrus"

	harness "github.com/mumoshu/naemon-bdd/pkg"
)

func init() {
	logrus.SetOutput(os.Stdout)

	verbose := false
	logtostderr := false
	for _, e := range os.Environ() {
		if strings.Contains(e, "VERBOSE=") {
			verbose = true
			break
		}
		if strings.Contains(e, "LOGTOSTDERR=") {
			logtostderr = true
			break
		}
	}

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if logtostderr {
		logrus.SetOutput(os.Stderr)
	}
}

// Suite assembles the scenario suite for cfg with explicit options.
// Package tests use it to attach the runner to their testing.T.
func Suite(cfg *harness.Config, opts *godog.Options) godog.TestSuite {
	registry := harness.NewRegistry(cfg)
	return godog.TestSuite{
		Name:                harness.AppName,
		ScenarioInitializer: registry.RegisterSteps,
		Options:             opts,
	}
}

// Options derives runner options from cfg. Concurrency stays at one, the
// daemon invocations must never interleave.
func Options(cfg *harness.Config, paths []string) *godog.Options {
	if len(paths) == 0 {
		paths = cfg.Features
	}
	return &godog.Options{
		Format:        cfg.Format,
		Paths:         paths,
		Tags:          cfg.Tags,
		Strict:        cfg.Strict,
		StopOnFailure: cfg.StopOnFailure,
		Randomize:     cfg.Randomize,
		Concurrency:   1,
		Output:        colors.Colored(os.Stdout),
	}
}

// Features runs the feature paths against the configured daemon and
// returns the runner status: 0 passed, 1 failed, 2 unable to run.
func Features(cfg *harness.Config, paths []string) int {
	return Suite(cfg, Options(cfg, paths)).Run()
}
