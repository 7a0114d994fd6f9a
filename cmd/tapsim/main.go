package main

import "github.com/OpenTraceLab/OpenTraceTAP/cmd/tapsim/cmd"

func main() {
	cmd.Execute()
}
