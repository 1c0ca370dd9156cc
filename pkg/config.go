package harness

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/errors"
	shellwords "github.com/mattn/go-shellwords"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xeipuuv/gojsonschema"

	"github.com/mumoshu/naemon-bdd/pkg/cli/env"
	"github.com/mumoshu/naemon-bdd/pkg/util/fileutil"
	"github.com/mumoshu/naemon-bdd/pkg/util/maputil"
	"github.com/mumoshu/naemon-bdd/pkg/util/stringutil"
)

// AppName names the binary, the config file, the env dotfile and the
// environment variable prefix.
const AppName = "naemon-bdd"

// settingSpec declares one userdata entry. The type drives flag
// registration, value conversion and schema validation alike.
type settingSpec struct {
	Name        string
	Type        string
	Default     interface{}
	Required    bool
	Description string
}

var settingSpecs = []settingSpec{
	{Name: "naemon_exec_path", Type: "string", Required: true, Description: "naemon executable, absolute or relative to workdir"},
	{Name: "naemon_extra_args", Type: "string", Default: "", Description: "extra arguments inserted before the mode flag"},
	{Name: "workdir", Type: "string", Default: ".", Description: "directory naemon_exec_path is resolved against"},
	{Name: "features", Type: "string", Default: "features", Description: "comma-separated feature paths"},
	{Name: "format", Type: "string", Default: "pretty", Description: "scenario output format"},
	{Name: "tags", Type: "string", Default: "", Description: "scenario tag filter expression"},
	{Name: "strict", Type: "boolean", Default: true, Description: "treat pending and undefined steps as failures"},
	{Name: "stop_on_failure", Type: "boolean", Default: false, Description: "stop at the first scenario failure"},
	{Name: "randomize", Type: "integer", Default: 0, Description: "seed for scenario shuffling, 0 keeps file order"},
	{Name: "log_level", Type: "string", Default: "info", Description: "log level when --verbose is off"},
}

// Config is the validated harness side of a suite: where the daemon
// executable lives and how the scenarios should be run.
type Config struct {
	ExecPath      string
	ExtraArgs     []string
	WorkDir       string
	Features      []string
	Format        string
	Tags          string
	Strict        bool
	StopOnFailure bool
	Randomize     int64
	LogLevel      string
}

// Executable resolves the daemon binary path. Relative paths are joined
// onto the working directory so suites can point at an in-tree build.
func (c *Config) Executable() string {
	if filepath.IsAbs(c.ExecPath) {
		return c.ExecPath
	}
	return filepath.Join(c.WorkDir, c.ExecPath)
}

// LoadSettings merges the configuration sources into v: naemon-bdd.yaml in
// the current directory, then config/environments/<env>.yaml for the
// environment selected through the .naemon-bddenv dotfile, then
// NAEMON_BDD_* environment variables. Passing a non-empty configFile skips
// the file discovery and loads exactly that file.
func LoadSettings(v *viper.Viper, log *logrus.Logger, configFile string) error {
	for _, s := range settingSpecs {
		if s.Default != nil {
			v.SetDefault(s.Name, s.Default)
		}
	}

	// Set default colors for the logs.
	v.SetDefault("log_color_panic", "red")
	v.SetDefault("log_color_fatal", "red")
	v.SetDefault("log_color_error", "red")
	v.SetDefault("log_color_warn", "red")
	v.SetDefault("log_color_info", "cyan")
	v.SetDefault("log_color_debug", "dark_gray")
	v.SetDefault("log_color_trace", "dark_gray")

	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.MergeInConfig(); err != nil {
			return errors.Trace(err)
		}
	} else {
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		v.SetConfigName(AppName)
		commonConfigFile := fmt.Sprintf("%s.yaml", AppName)
		commonConfigMsg := fmt.Sprintf("loading config file %s...", commonConfigFile)
		if fileutil.Exists(commonConfigFile) {
			if err := v.MergeInConfig(); err != nil {
				log.Errorf("%serror", commonConfigMsg)
				return errors.Trace(err)
			}
			log.Debugf("%sdone", commonConfigMsg)
		} else {
			log.Debugf("%smissing", commonConfigMsg)
		}
	}

	env.SetAppName(AppName)
	envMsg := fmt.Sprintf("loading env file %s...", env.GetPath())
	envName, err := env.Get()
	if err != nil {
		log.Debugf("%smissing", envMsg)
	} else {
		log.Debugf("%sdone", envMsg)

		envConfigName := fmt.Sprintf("config/environments/%s", envName)
		envConfigFile := fmt.Sprintf("%s.yaml", envConfigName)
		envConfigMsg := fmt.Sprintf("loading config file %s...", envConfigFile)
		v.SetConfigName(envConfigName)
		if fileutil.Exists(envConfigFile) {
			if err := v.MergeInConfig(); err != nil {
				log.Errorf("%serror", envConfigMsg)
				return errors.Trace(err)
			}
			log.Debugf("%sdone", envConfigMsg)
		} else {
			log.Debugf("%smissing", envConfigMsg)
		}
	}

	v.SetEnvPrefix(stringutil.ToEnvironmentName(AppName))
	v.AutomaticEnv()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	return nil
}

// RegisterFlags declares one command line flag per setting and binds it
// into v so flags override files and environment variables.
func RegisterFlags(flags *pflag.FlagSet, v *viper.Viper) {
	for _, s := range settingSpecs {
		name := stringutil.ToArgumentName(s.Name)
		usage := fmt.Sprintf("%s (env %s)", s.Description, envNameForSetting(s.Name))

		switch s.Type {
		case "boolean":
			d, _ := s.Default.(bool)
			flags.Bool(name, d, usage)
		case "integer":
			d, _ := s.Default.(int)
			flags.Int(name, d, usage)
		default:
			d, _ := s.Default.(string)
			flags.String(name, d, usage)
		}

		v.BindPFlag(s.Name, flags.Lookup(name))
	}
}

// ConfigFromViper validates the merged settings and materializes a Config.
// Violations are accumulated and reported together, each naming the
// environment variable that would satisfy it.
func ConfigFromViper(v *viper.Viper) (*Config, error) {
	var errs *multierror.Error

	settings := map[string]interface{}{}
	for _, s := range settingSpecs {
		if v.Get(s.Name) == nil {
			continue
		}

		raw := v.GetString(s.Name)
		switch s.Type {
		case "integer":
			i, err := strconv.Atoi(raw)
			if err != nil {
				errs = multierror.Append(errs, errors.Errorf("%s must be an integer, got %q", s.Name, raw))
				continue
			}
			settings[s.Name] = i
		case "boolean":
			b, err := strconv.ParseBool(raw)
			if err != nil {
				errs = multierror.Append(errs, errors.Errorf("%s must be a boolean, got %q", s.Name, raw))
				continue
			}
			settings[s.Name] = b
		default:
			settings[s.Name] = raw
		}
	}

	stringified, err := maputil.RecursivelyStringifyKeys(settings)
	if err != nil {
		return nil, errors.Annotate(err, "normalizing settings")
	}
	kv := maputil.Flatten(stringified)

	logrus.Debugf("validating settings:%s", maputil.FlattenAsString(stringified))

	schema, err := jsonschemaFromSettings(settingSpecs)
	if err != nil {
		return nil, errors.Annotate(err, "generating jsonschema for settings")
	}

	doc := gojsonschema.NewGoLoader(kv)
	result, err := schema.Validate(doc)
	if err != nil {
		return nil, errors.Annotate(err, "validating settings")
	}
	if !result.Valid() {
		for _, violation := range result.Errors() {
			name := settingNameFromViolation(violation)
			errs = multierror.Append(errs, errors.Errorf("%s (env %s)", violation, envNameForSetting(name)))
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	extraArgs, err := shellwords.Parse(v.GetString("naemon_extra_args"))
	if err != nil {
		return nil, errors.Annotatef(err, "parsing naemon_extra_args %q", v.GetString("naemon_extra_args"))
	}

	return &Config{
		ExecPath:      v.GetString("naemon_exec_path"),
		ExtraArgs:     extraArgs,
		WorkDir:       v.GetString("workdir"),
		Features:      splitPaths(v.GetString("features")),
		Format:        v.GetString("format"),
		Tags:          v.GetString("tags"),
		Strict:        v.GetBool("strict"),
		StopOnFailure: v.GetBool("stop_on_failure"),
		Randomize:     int64(v.GetInt("randomize")),
		LogLevel:      v.GetString("log_level"),
	}, nil
}

func splitPaths(s string) []string {
	var paths []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func envNameForSetting(name string) string {
	return stringutil.ToEnvironmentName(fmt.Sprintf("%s.%s", AppName, name))
}

func settingNameFromViolation(violation gojsonschema.ResultError) string {
	if p, ok := violation.Details()["property"].(string); ok {
		return p
	}
	return violation.Field()
}

func jsonschemaFromSettings(specs []settingSpec) (*gojsonschema.Schema, error) {
	required := []string{}
	props := map[string]map[string]interface{}{}
	for _, s := range specs {
		prop := map[string]interface{}{
			"type": s.Type,
		}
		if s.Required && s.Type == "string" {
			// Bound flags surface unset strings as "", which would
			// satisfy a bare required check.
			prop["minLength"] = 1
		}
		props[s.Name] = prop

		if s.Required {
			required = append(required, s.Name)
		}
	}
	goschema := map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
	schemaLoader := gojsonschema.NewGoLoader(goschema)
	return gojsonschema.NewSchema(schemaLoader)
}
