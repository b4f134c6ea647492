// Package server provides the gatewright HTTP API: anchor and profile
// management, gate evaluation with reframe and acknowledge follow-ons,
// gate log and trace retrieval, and trace replay.
//
// All endpoints speak JSON under /v1. Errors map to a stable envelope:
//
//	{"error": {"type": "not_found", "message": "..."}}
//
// Storage sentinel errors become 404 or 409, validation and transition
// errors become 422, and everything else is a 500 with the detail kept in
// the server log rather than the response.
//
// The server manages its own lifecycle: Start blocks until the context is
// cancelled, an OS signal arrives, or Shutdown is called; shutdown drains
// in-flight requests within the configured timeout.
package server
