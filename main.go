package main

import "excalibur-cli/cmd"

func main() {
	cmd.Execute()
}
