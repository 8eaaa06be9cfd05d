package main

import (
	"github.com/ml2hw/ml2hw/cmd"
)

func main() {
	cmd.Execute()
}
