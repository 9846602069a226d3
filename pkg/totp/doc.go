// Package totp implements Time-based One-Time Passwords (RFC 6238) on top of
// the HOTP algorithm (RFC 4226), together with secret key generation and
// enrollment URI construction for authenticator apps.
//
// The package is deliberately self-contained and pure: validation takes the
// evaluation time as an explicit parameter, which keeps time-window semantics
// testable without clock manipulation. Codes are 6 digits over a 30-second
// step, and a code is accepted for the step before and after the current one
// to tolerate clock drift.
//
// The minimal enrollment path:
//
//	secret, _ := totp.GenerateSecretKey()
//	uri, _ := totp.EnrollmentURI(totp.URIParams{
//		Secret:      secret,
//		AccountName: "alice",
//		Issuer:      "Flashdeck",
//	})
//	// render uri as a QR code, then later:
//	ok, _ := totp.Validate(secret, submittedCode)
package totp
