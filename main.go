package main

import "storagebox/cmd"

func main() {
	cmd.Execute()
}
