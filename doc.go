// Package cloudanchor wires the cloud anchor packages into a runnable MCP
// server.
//
// Options can be loaded from a YAML file (any afs URL) and overridden by
// command line flags; NewServer builds the shared cloud service, the short
// code store and the MCP server, and Run does both and serves over stdio or
// streamable HTTP:
//
//	anchord --config=/etc/anchord.yaml --transport-type=streamable --port=5000
package cloudanchor
