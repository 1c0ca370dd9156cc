package config

import (
	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages-go/v16"
)

// ObjectConfig accumulates Naemon object definitions (hosts, services,
// commands and so on) and serializes them in the daemon's object
// configuration syntax.
type ObjectConfig interface {
	AddObject(objectType string, table *godog.Table) error
	WriteToFile(path string) error
	Filename() string
}

// SystemConfig accumulates Naemon main-configuration variables and
// serializes them as key=value lines.
type SystemConfig interface {
	SetVar(name string, value string) error
	Get(name string) (string, bool)
	WriteToFile(path string) error
	Filename() string
}

// NewTable builds a step table from literal rows. The first row is the
// header. Handlers use it to feed fixture data through the same entry
// points the scenario steps use.
func NewTable(rows [][]string) *godog.Table {
	t := &godog.Table{}
	for _, row := range rows {
		cells := make([]*messages.PickleTableCell, len(row))
		for i, value := range row {
			cells[i] = &messages.PickleTableCell{Value: value}
		}
		t.Rows = append(t.Rows, &messages.PickleTableRow{Cells: cells})
	}
	return t
}
