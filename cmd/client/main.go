package main

import "lunasync/cmd/client/cmd"

func main() {
	cmd.Execute()
}
