package main

import "github.com/jsphweid/surprisal/cmd"

func main() {
	cmd.Execute()
}
