/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/ssargent/dbcport/cmd/dbcport/cmd"
)

func main() {
	cmd.Execute()
}
