package main

import (
	"github.com/edulabs-io/planctl/cmd"
)

func main() {
	cmd.Execute()
}
