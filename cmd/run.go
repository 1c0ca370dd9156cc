package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	harness "github.com/mumoshu/naemon-bdd/pkg"
	"github.com/mumoshu/naemon-bdd/pkg/run"
)

var RunCmd = &cobra.Command{
	Use:   "run [FEATURE_PATH...]",
	Short: "Run feature files against the configured naemon build",
	Long: `Run feature files against the configured naemon build.

With no arguments the configured feature paths are used, "features" unless
overridden.

Example:
naemon-bdd run
naemon-bdd run features/verification.feature --naemon-exec-path build/naemon
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := app.Viper
		if v == nil {
			v = viper.GetViper()
		}
		log := app.Log
		if log == nil {
			log = logrus.StandardLogger()
		}

		if err := harness.LoadSettings(v, log, app.ConfigFile); err != nil {
			return harness.NewInitError(err)
		}

		cfg, err := harness.ConfigFromViper(v)
		if err != nil {
			return harness.NewInitError(err)
		}

		if status := run.Features(cfg, args); status != 0 {
			return harness.NewSuiteError(status)
		}
		return nil
	},
}

func init() {
	harness.RegisterFlags(RunCmd.Flags(), viper.GetViper())
}
