package get

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// This is shared across naemon-bdd commands, so that they can share the
// cache for fetched feature packs
const cacheBaseDir = ".naemon-bdd"

// Unmarshal fetches one file out of a pack and decodes it by extension,
// yaml unless the name says json.
func Unmarshal(src string, dst interface{}) error {
	bytes, err := GetBytes(src)
	if err != nil {
		return err
	}

	strs := strings.Split(src, "/")
	file := strs[len(strs)-1]
	ext := filepath.Ext(file)

	{
		logrus.Tracef("unmarshalling %s", string(bytes))

		var err error
		switch ext {
		case "json":
			err = json.Unmarshal(bytes, dst)
		default:
			err = yaml.Unmarshal(bytes, dst)
		}

		logrus.Tracef("unmarshalled to %v", dst)

		if err != nil {
			return err
		}
	}

	return nil
}

// GetBytes reads a single file from a fetched pack.
func GetBytes(goGetterSrc string) ([]byte, error) {
	getterSrcParts := strings.Split(goGetterSrc, "//")
	if len(getterSrcParts) != 2 {
		return nil, fmt.Errorf("format the src description with $repo//$path, like github.com/naemon/naemon-features//core/pack.yaml: %s", goGetterSrc)
	}

	lastIndex := len(getterSrcParts) - 1

	fileAndQuery := strings.SplitN(getterSrcParts[lastIndex], "?", 2)
	file := fileAndQuery[0]
	var fileQuery string
	if len(fileAndQuery) > 1 {
		fileQuery = fileAndQuery[1]
	}

	dirAndQuery := strings.Split(strings.Join(getterSrcParts[:lastIndex], "/"), "?")
	srcDir := dirAndQuery[0]
	var dirQuery string
	if len(dirAndQuery) > 1 {
		dirQuery = dirAndQuery[1]
	}

	dst, err := fetch(srcDir, strings.Join([]string{fileQuery, dirQuery}, "&"))
	if err != nil {
		return nil, err
	}

	bytes, err := ioutil.ReadFile(filepath.Join(dst, file))
	if err != nil {
		return nil, fmt.Errorf("read file: %v", err)
	}

	return bytes, nil
}

// Dir fetches the feature pack at goGetterSrc into the shared cache and
// returns the local directory. Fetching the same source again reuses the
// cached copy.
func Dir(goGetterSrc string) (string, error) {
	srcAndQuery := strings.SplitN(goGetterSrc, "?", 2)
	src := srcAndQuery[0]
	var query string
	if len(srcAndQuery) > 1 {
		query = srcAndQuery[1]
	}
	return fetch(src, query)
}

func fetch(srcDir string, query string) (string, error) {
	pwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	query = strings.Trim(query, "&")

	var cacheKey string
	replacer := strings.NewReplacer("/", "_", ".", "_")
	dirKey := replacer.Replace(srcDir)
	if len(query) > 0 {
		paramsKey := strings.Replace(query, "&", "_", -1)
		cacheKey = fmt.Sprintf("%s.%s", dirKey, paramsKey)
	} else {
		cacheKey = dirKey
	}

	cached := false

	dst := filepath.Join(cacheBaseDir, cacheKey)
	{
		stat, err := os.Stat(dst)
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("stat: %v", err)
		} else if err == nil {
			if !stat.IsDir() {
				return "", fmt.Errorf("%s is not directory. please remove it so that naemon-bdd could use it for feature pack caching", dst)
			}

			cached = true
		}
	}

	if !cached {
		logrus.Debugf("downloading %s to %s", srcDir, dst)

		var src string

		if len(query) == 0 {
			src = srcDir
		} else {
			src = strings.Join([]string{srcDir, query}, "?")
		}

		get := &getter.Client{
			Ctx:     ctx,
			Src:     src,
			Dst:     dst,
			Pwd:     pwd,
			Mode:    getter.ClientModeDir,
			Options: []getter.ClientOption{},
		}

		logrus.Tracef("client: %+v", *get)

		if err := get.Get(); err != nil {
			return "", fmt.Errorf("get: %v", err)
		}
	}

	return dst, nil
}
