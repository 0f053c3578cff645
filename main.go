package main

import "github.com/ShruAgarwal/Zoogist-Insights/cmd"

func main() {
	cmd.Execute()
}
