// Package utils provides small helpers shared by the commands: home
// directory expansion, terminal detection and opening URLs in a browser.
package utils
