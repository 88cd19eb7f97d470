package main

import "transconnect/cmd"

func main() {
	cmd.Run()
}
