package main

import (
	"github.com/evote-ccr/control-component/cmd/ccr/cmd"
)

func main() {
	cmd.Execute()
}
