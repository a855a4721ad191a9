package main

import "adaptTrimmer/cmd"

func main() {
	cmd.Execute() // initialize cobra commands
}
