package main

import (
	"os"

	"quill/cmd/quillctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
