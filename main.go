package main

import "github.com/brogergvhs/ebangla2epub/cmd"

func main() {
	cmd.Execute()
}
