package main

import "github.com/KaramelBytes/molscope-cli/cmd"

func main() {
	cmd.Execute()
}
