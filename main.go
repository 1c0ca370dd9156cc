package main

import (
	"github.com/mumoshu/naemon-bdd/cmd"
)

func main() {
	cmd.MustRun()
}
