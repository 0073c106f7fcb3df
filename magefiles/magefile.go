//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
var Default = Build

var tools = []string{"d0z0", "d0z0res", "resratio", "rvsres", "thetares", "resmap"}

// Build compiles every tool into ./bin.
func Build() error {
	for _, tool := range tools {
		mg.Deps(mg.F(buildTool, tool))
	}
	fmt.Println("Compilation finished")
	return nil
}

// Test runs the unit tests.
func Test() error {
	return run("go", "test", "./...")
}

func buildTool(name string) error {
	fmt.Printf("Building %s executable...\n", name)
	return run("go", "build", "-o", "./bin/"+name, "./"+name)
}

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
