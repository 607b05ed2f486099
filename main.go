package main

import "github.com/jsphweid/midgrid/cmd"

func main() {
	cmd.Execute()
}
