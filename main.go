package main

import (
	"tezbeat/cmd"
)

func main() {
	cmd.Execute()
}
