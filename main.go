package main

import "github.com/qrave1/GiftRoulette/cmd"

func main() {
	cmd.Execute()
}
