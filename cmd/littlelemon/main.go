package main

import "github.com/ashfaq-akash/LittleLemonApi/cmd/littlelemon/commands"

func main() {
	commands.Execute()
}
