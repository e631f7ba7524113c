// cmd/osfiler/main.go
package main

import (
	"fmt"
	"os"

	"github.com/OnlyOneCookie/OSFiler/cmd/osfiler/commands"
)

func main() {
	if err := commands.NewCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
