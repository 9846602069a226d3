// Package qrcode provides helpers for generating QR code images either as raw
// PNG bytes or as a data-URI string that can be embedded directly into HTML.
//
// The package is a thin wrapper around github.com/skip2/go-qrcode that adds
// sensible defaults and input validation. Errors are declared as package-level
// sentinels so they can be compared with errors.Is.
package qrcode
