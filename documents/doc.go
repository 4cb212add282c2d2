// Package documents maps the gateway's per-user entities onto blob store
// keys. Every owner's data lives under "<owner>/".
package documents
