// Package sanitizer normalizes user input and masks sensitive values before
// they are stored or logged.
//
//	email := sanitizer.NormalizeEmail(" Jane@Example.COM ") // "jane@example.com"
//	masked := sanitizer.MaskEmail(email)                   // "j***@example.com"
//
// The package is stateless and safe for concurrent use.
package sanitizer
