// Package homebrew implements the Homebrew provider: it captures the
// installed package inventory as a Brewfile and can replay it on restore.
package homebrew
