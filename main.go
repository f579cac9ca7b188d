package main

import (
	"flightcast/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
