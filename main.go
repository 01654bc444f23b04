package main

import "github.com/KaramelBytes/suburbscope/cmd"

func main() {
	cmd.Execute()
}
