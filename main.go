package main

import "github.com/owlandlion/access-cli/cmd"

func main() {
	cmd.Execute()
}
