package main

import (
	"github.com/freakstore-tools/freaksync/cmd"
)

func main() {
	cmd.Execute()
}
