package main

import "gradebook/cmd/client/cmd"

func main() {
	cmd.Execute()
}
