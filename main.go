package main

import (
	"os"

	"guardcheck/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
