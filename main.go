package main

import "ins2doi/cmd"

func main() {
	cmd.Execute()
}
