/*
Copyright © 2026 Paulo Suderio
*/
package main

import "github.com/suderio/dicebot/cmd"

func main() {
	cmd.Execute()
}
