// Package api holds the gateway's HTTP services. Each service owns one
// "/<name>/<version>/" prefix and answers through a route table keyed by
// method and the first sub-path segment; handlers translate requests into
// command and query messages.
package api
