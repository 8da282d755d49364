//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Opens the window with validation enabled and idles until it is closed.
func (Run) Debug() error {
	fmt.Println("Run vkboot...")
	_, err := executeCmd("go", withArgs("run", "."), withStream())
	return err
}

// Same as Debug, with validation layers compiled out.
func (Run) Release() error {
	mg.Deps(Build.Release)
	_, err := executeCmd("bin/vkboot", withStream())
	return err
}
