package main

import (
	"os"

	"github.com/ThaMacroMan/Whatsapp-Agent/cmd/whatsapp-agent/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
