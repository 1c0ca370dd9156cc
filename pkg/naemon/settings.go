package naemon

import (
	"bytes"
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// SystemConfig accumulates Naemon main-configuration variables. Setting a
// variable again overwrites the earlier value while keeping its position,
// so the emitted file stays stable across reruns.
type SystemConfig struct {
	filename string
	names    []string
	values   map[string]string
}

func NewSystemConfig(filename string) *SystemConfig {
	return &SystemConfig{
		filename: filename,
		values:   map[string]string{},
	}
}

func (c *SystemConfig) Filename() string {
	return c.filename
}

func (c *SystemConfig) SetVar(name string, value string) error {
	if name == "" {
		return errors.New("configuration variable name must not be empty")
	}

	if _, ok := c.values[name]; !ok {
		c.names = append(c.names, name)
	}
	c.values[name] = value

	log.WithFields(log.Fields{"name": name, "value": value}).Debug("system config variable set")

	return nil
}

// Get returns the current value of a variable and whether it has been set.
func (c *SystemConfig) Get(name string) (string, bool) {
	value, ok := c.values[name]
	return value, ok
}

// WriteToFile serializes the variables as key=value lines in insertion
// order.
func (c *SystemConfig) WriteToFile(path string) error {
	var buf bytes.Buffer

	for _, name := range c.names {
		fmt.Fprintf(&buf, "%s=%s\n", name, c.values[name])
	}

	if err := ioutil.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "writing system configuration to %s", path)
	}

	log.Debugf("system config written to %s", path)

	return nil
}
