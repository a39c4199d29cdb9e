package main

import "github.com/hostsim/hostsim/cmd"

func main() {
	cmd.Execute()
}
