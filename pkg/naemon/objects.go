package naemon

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/cucumber/godog"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ObjectConfig accumulates object definitions per object type and writes
// them out in Naemon's native object syntax. Adding the same table for a
// type twice is a no-op, so step implementations are free to re-invoke
// AddObject once per table row the way the scenario vocabulary does.
type ObjectConfig struct {
	filename string
	types    []string
	objects  map[string][]objectDef
	seen     map[string]map[string]bool
}

type objectDef struct {
	fields []objectField
}

type objectField struct {
	name  string
	value string
}

func NewObjectConfig(filename string) *ObjectConfig {
	return &ObjectConfig{
		filename: filename,
		objects:  map[string][]objectDef{},
		seen:     map[string]map[string]bool{},
	}
}

func (c *ObjectConfig) Filename() string {
	return c.filename
}

// AddObject records one object definition per data row of the table. The
// first table row is the header naming the object's directives.
func (c *ObjectConfig) AddObject(objectType string, table *godog.Table) error {
	if objectType == "" {
		return errors.New("object type must not be empty")
	}
	if table == nil || len(table.Rows) == 0 {
		return errors.Errorf("%s objects require a table with a header row", objectType)
	}

	header := table.Rows[0]
	if len(header.Cells) == 0 {
		return errors.Errorf("%s objects table has an empty header row", objectType)
	}

	for i, row := range table.Rows[1:] {
		if len(row.Cells) != len(header.Cells) {
			return errors.Errorf("%s objects table row %d has %d cells while the header has %d", objectType, i+1, len(row.Cells), len(header.Cells))
		}

		def := objectDef{}
		for j, cell := range row.Cells {
			def.fields = append(def.fields, objectField{
				name:  header.Cells[j].Value,
				value: cell.Value,
			})
		}

		if c.put(objectType, def) {
			log.WithFields(log.Fields{"type": objectType}).Debugf("object config added %s", def.signature())
		}
	}

	return nil
}

func (c *ObjectConfig) put(objectType string, def objectDef) bool {
	sigs, ok := c.seen[objectType]
	if !ok {
		sigs = map[string]bool{}
		c.seen[objectType] = sigs
		c.types = append(c.types, objectType)
	}

	sig := def.signature()
	if sigs[sig] {
		return false
	}
	sigs[sig] = true

	c.objects[objectType] = append(c.objects[objectType], def)
	return true
}

func (d objectDef) signature() string {
	parts := make([]string, len(d.fields))
	for i, f := range d.fields {
		parts[i] = f.name + "=" + f.value
	}
	return strings.Join(parts, "\x00")
}

// WriteToFile serializes every accumulated object, grouped by object type in
// the order types were first added. Rewriting the same state produces the
// same bytes.
func (c *ObjectConfig) WriteToFile(path string) error {
	var buf bytes.Buffer

	for _, objectType := range c.types {
		for _, def := range c.objects[objectType] {
			fmt.Fprintf(&buf, "define %s {\n", objectType)
			for _, f := range def.fields {
				fmt.Fprintf(&buf, "    %s %s\n", f.name, f.value)
			}
			buf.WriteString("}\n\n")
		}
	}

	if err := ioutil.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "writing object configuration to %s", path)
	}

	log.Debugf("object config written to %s", path)

	return nil
}
