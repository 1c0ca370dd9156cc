package harness

import (
	"github.com/mattn/go-shellwords"
	"os"
	"strings"
)

func ArgsFromEnvVars() ([]string, error) {
	return argsFromEnvVars(os.Getenv)
}

func argsFromEnvVars(getenv func(string) string) ([]string, error) {
	const (
		Run           = "NAEMON_BDD_RUN"
		RunTrimPrefix = "NAEMON_BDD_RUN_TRIM_PREFIX"
	)

	run := getenv(Run)
	prefix := getenv(RunTrimPrefix)

	if run != "" {
		run = strings.TrimSpace(run)
		if prefix != "" {
			run = strings.TrimPrefix(run, prefix)
		}

		return shellwords.Parse(run)
	}
	return nil, nil
}
