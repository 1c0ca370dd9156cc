package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mumoshu/naemon-bdd/pkg/cli/version"
)

func VersionCmd(log *logrus.Logger) *cobra.Command {
	var output string

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of naemon-bdd",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := version.Get()
			if err != nil {
				return err
			}

			if output == "json" {
				bs, err := json.Marshal(v)
				if err != nil {
					return err
				}
				fmt.Println(string(bs))
				return nil
			}

			if v.ApplicationVersion != "" {
				fmt.Printf("%s (harness %s)\n", v.ApplicationVersion, v.FrameworkVersion)
			} else {
				fmt.Println(v.FrameworkVersion)
			}
			return nil
		},
	}

	versionCmd.Flags().StringVarP(&output, "output", "o", "text", "Output format. One of: json|text")

	return versionCmd
}
