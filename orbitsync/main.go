// Package main is the entry point of the orbitsync command.
package main

import "github.com/sarchlab/orbitsync/orbitsync/cmd"

func main() {
	cmd.Execute()
}
