package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	harness "github.com/mumoshu/naemon-bdd/pkg"
	"github.com/mumoshu/naemon-bdd/pkg/cli/env"
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

// app is the state shared by every command, bound to the persistent flags.
var app = &harness.Application{
	Name: harness.AppName,
}

// RootCmd assembles the whole command tree.
func RootCmd(log *logrus.Logger) *cobra.Command {
	app.Log = log
	app.Viper = viper.GetViper()
	app.Env = env.GetOrDefault("default")

	rootCmd := &cobra.Command{
		Use:   harness.AppName,
		Short: "Drive a naemon build through Gherkin scenarios",
		Long: `naemon-bdd generates naemon configuration from scenario tables, runs the
daemon in verification or daemonized mode and asserts on its exit codes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.UpdateLoggingConfiguration(); err != nil {
				return harness.NewInitError(err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&app.Output, "output", "o", "text", "Output format. One of: json|text|bunyan|message")
	rootCmd.PersistentFlags().BoolVarP(&app.Colorize, "color", "C", true, "Colorize output")
	rootCmd.PersistentFlags().StringVarP(&app.ConfigFile, "config-file", "c", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&app.LogToStderr, "logtostderr", true, "write log messages to stderr")

	rootCmd.AddCommand(
		RunCmd,
		GetCmd,
		InitCmd,
		EnvCmd,
		VersionCmd(log),
	)

	return rootCmd
}

func MustRun() {
	if err := RunE(); err != nil {
		HandleErrorAndExit(err)
	}
}

func RunE() error {
	args := os.Args[1:]

	additionalArgs, err := harness.ArgsFromEnvVars()
	if err != nil {
		return harness.NewInitError(err)
	}
	args = append(args, additionalArgs...)

	rootCmd := RootCmd(logrus.StandardLogger())
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func HandleErrorAndExit(err error) {
	msg, status := HandleError(err)
	if msg != "" {
		logrus.Errorf("%s", msg)
	}
	os.Exit(status)
}

// HandleError maps an error to the message to log and the process exit
// status: InitError means the suite never ran, SuiteError carries the
// runner status through.
func HandleError(err error) (string, int) {
	if err == nil {
		return "", 0
	}
	switch e := err.(type) {
	case harness.InitError:
		return fmt.Sprintf("%v", e), 2
	case harness.SuiteError:
		return fmt.Sprintf("%v", e), e.Status
	default:
		return fmt.Sprintf("%v", err), 1
	}
}
