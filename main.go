package main

import "github.com/mj1618/delphi-cli/cmd"

func main() {
	cmd.Execute()
}
