//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Downloads modules and builds the debug binary with validation layers on.
func (Build) Debug() error {
	if _, err := executeCmd("go", withArgs("mod", "download"), withStream()); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("build", "-o", "bin/vkboot", "."), withStream())
	return err
}

// Builds the release binary. Validation layers are compiled out.
func (Build) Release() error {
	_, err := executeCmd("go", withArgs("build", "-tags", "release", "-o", "bin/vkboot", "."), withStream())
	return err
}

// Runs the test suite and go vet for both build flavours.
func (Build) Check() error {
	for _, args := range [][]string{
		{"vet", "./..."},
		{"vet", "-tags", "release", "./..."},
		{"test", "./..."},
		{"test", "-tags", "mage", "./magefiles"},
	} {
		if _, err := executeCmd("go", withArgs(args...), withStream()); err != nil {
			return err
		}
	}
	return nil
}
