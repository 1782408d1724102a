package main

import "github.com/KaramelBytes/kpilens/cmd"

func main() {
	cmd.Execute()
}
