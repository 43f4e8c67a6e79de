package main

import (
	"io"
	"os"

	"github.com/salhakar/doceditor"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer

	// ExportOptions are appended to the options built from config.
	// Tests use it to swap the browser for a fake rasterizer.
	ExportOptions []doceditor.ExportOption
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}
