// Package compiler turns YAML grammar files into rules for the runtime.
package compiler
