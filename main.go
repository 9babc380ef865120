package main

import "github.com/Yates-Labs/mentor/cmd"

func main() {
	cmd.Execute()
}
