// Package providers groups the third-party identity providers the gateway
// signs users in with. Only GitHub is wired.
package providers
