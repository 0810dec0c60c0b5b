// Package directory implements user registration, authentication, and the
// user listing that backs the conversation directory.
//
// Passwords are hashed with bcrypt before they reach storage; the plaintext
// never leaves this package. Authenticate returns a single
// ErrInvalidCredentials for both unknown usernames and wrong passwords, with
// a dummy hash comparison on the unknown-user path to keep timing uniform.
package directory
