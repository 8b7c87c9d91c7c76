// Package utils hosts configuration loading and logging helpers shared by the
// devsnap command-line application.
package utils
