package main

import (
	"fmt"
	"os"

	"github.com/bertrandmartel/yummy/cmd/yummyctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
