// Package internal holds helpers shared by the stepauth packages. Nothing
// in here is part of the public API.
package internal
