package main

import (
	"os"

	"autocase/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
