package harness

import (
	"os"
	"path"

	"github.com/juju/errors"
	bunyan "github.com/mumoshu/logrus-bunyan-formatter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Application carries the state shared by every CLI command: the logging
// switches bound to persistent flags, the selected environment and the
// viper instance the settings were merged into.
type Application struct {
	Name        string
	ConfigFile  string
	Verbose     bool
	Output      string
	Colorize    bool
	LogToStderr bool
	Env         string
	Viper       *viper.Viper
	Log         *log.Logger
}

func (p *Application) UpdateLoggingConfiguration() error {
	v := p.Viper
	if v == nil {
		v = viper.GetViper()
	}

	if p.Verbose {
		log.SetLevel(log.DebugLevel)
	} else if levelName := v.GetString("log_level"); levelName != "" {
		level, err := log.ParseLevel(levelName)
		if err != nil {
			return errors.Annotatef(err, "unexpected log level specified: %s", levelName)
		}
		log.SetLevel(level)
	}

	if p.LogToStderr {
		log.SetOutput(os.Stderr)
	}

	commandName := path.Base(os.Args[0])
	if p.Output == "bunyan" {
		log.SetFormatter(&bunyan.Formatter{Name: commandName})
	} else if p.Output == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else if p.Output == "text" {
		log.SetFormatter(newTextLogFormatter(v, p.Colorize))
	} else if p.Output == "message" {
		log.SetFormatter(&MessageOnlyFormatter{})
	} else {
		return errors.Errorf("unexpected output format specified: %s", p.Output)
	}

	return nil
}
