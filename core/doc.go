// Package core contains the gateway contracts, configuration, error taxonomy and
// request routing. Storage, transport and service adapters depend on this
// package; core must not depend on any of them.
package core
