package main

import "github.com/frahmantamala/field-expense/cmd"

func main() {
	cmd.Execute()
}
