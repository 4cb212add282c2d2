// Package auth issues and verifies the gateway's signed bearer tokens and
// hashes account passwords.
package auth
