// Copyright © 2018 Yusuke KUOKA <ykuoka@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/juju/errors"
	"github.com/spf13/cobra"

	harness "github.com/mumoshu/naemon-bdd/pkg"
)

var initExecPath string

var InitCmd = &cobra.Command{
	Use:   "init NAME",
	Short: "Scaffold a naemon-bdd suite",
	Long: `Scaffold a suite named NAME: a settings file, a starter feature and an
environment overlay.

Example:
naemon-bdd init mysuite --naemon-path /usr/bin/naemon
cd mysuite && naemon-bdd run
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return scaffold(args[0], initExecPath)
	},
}

func init() {
	InitCmd.Flags().StringVar(&initExecPath, "naemon-path", "/usr/bin/naemon", "naemon executable the new suite will drive")
}

type scaffoldParams struct {
	Name     string
	ExecPath string
}

var scaffoldFiles = []struct {
	Path string
	Body string
}{
	{
		Path: harness.AppName + ".yaml",
		Body: `# Settings for the {{ .Name }} suite. Every key can be overridden per
# environment under config/environments/ or with a NAEMON_BDD_* variable.
naemon_exec_path: {{ .ExecPath }}
workdir: .
features: features
format: pretty
log_level: info
`,
	},
	{
		Path: filepath.Join("features", "verification.feature"),
		Body: `Feature: {{ .Name | title }} configuration verification
  Naemon accepts the generated configuration and rejects broken one.

  Scenario: A minimal host passes verification
    Given I have naemon host objects
      | use          | host_name | address   |
      | default-host | localhost | 127.0.0.1 |
    Then config verification pass

  Scenario: An unknown parameter fails verification
    Given I have an invalid naemon system configuration
    Then config verification fail
`,
	},
	{
		Path: filepath.Join("config", "environments", "default.yaml"),
		Body: `# Overrides applied when the "default" environment is selected.
{}
`,
	},
	{
		Path: "." + harness.AppName + "env",
		Body: `default
`,
	},
}

func scaffold(name string, execPath string) error {
	params := scaffoldParams{Name: name, ExecPath: execPath}

	for _, f := range scaffoldFiles {
		tmpl, err := template.New(f.Path).Funcs(sprig.TxtFuncMap()).Parse(f.Body)
		if err != nil {
			return errors.Annotatef(err, "parsing scaffold template %s", f.Path)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, params); err != nil {
			return errors.Annotatef(err, "rendering scaffold template %s", f.Path)
		}

		path := filepath.Join(name, f.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return errors.Trace(err)
		}
		if err := ioutil.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return errors.Trace(err)
		}
	}

	return nil
}
