package main

import "github.com/Siddhant-K-code/simplify/cmd"

func main() {
	cmd.Execute()
}
