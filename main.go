package main

import "github.com/festflow/festflow/cmd"

func main() {
	cmd.Execute()
}
