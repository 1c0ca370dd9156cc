package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mumoshu/naemon-bdd/pkg/get"
	"github.com/mumoshu/naemon-bdd/pkg/util/maputil"
)

var GetCmd = &cobra.Command{
	Use:   "get SRC",
	Short: "Fetch a feature pack into the local cache",
	Long: `Fetch a feature pack into the .naemon-bdd cache and print its local path.

SRC is any go-getter source, so git repositories, archives and plain HTTP
all work:

naemon-bdd get github.com/naemon/naemon-features
naemon-bdd run $(naemon-bdd get github.com/naemon/naemon-features)/features
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := args[0]

		dir, err := get.Dir(src)
		if err != nil {
			return err
		}

		// Packs may describe themselves in a pack.yaml at their root.
		manifest := map[interface{}]interface{}{}
		if err := get.Unmarshal(fmt.Sprintf("%s//pack.yaml", src), &manifest); err != nil {
			logrus.Debugf("no readable pack.yaml in %s: %v", src, err)
		} else if pack, err := maputil.CastKeysToStrings(manifest); err == nil {
			if name, ok := pack["name"].(string); ok {
				logrus.WithFields(logrus.Fields{"pack": name}).Infof("fetched %v", pack["description"])
			}
		}

		fmt.Println(dir)
		return nil
	},
}
