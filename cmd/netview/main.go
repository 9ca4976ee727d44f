package main

import (
	"os"

	"github.com/vanshika/referralnet/cmd/netview/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
