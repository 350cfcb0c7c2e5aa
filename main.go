package main

import "github.com/gaurav-prasanna/senseiharvest/cmd"

func main() {
	cmd.Execute()
}
