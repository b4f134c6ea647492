// Gatewright is a conflict-detection and decision audit engine for
// automated agents and operators.
//
// It keeps a registry of standing policy statements ("truth anchors"),
// checks incoming requests against them, and either proceeds or gates with
// an explanation. Every evaluation appends an immutable gate log and a
// decision trace that can be replayed later against the current anchor set
// to detect drift.
//
// Usage:
//
//	# Start the API server with default configuration
//	gatewright run
//
//	# Start with a custom configuration file
//	gatewright run --config /path/to/config.yaml
//
//	# Load anchors and profiles from a seed file
//	gatewright seed --file anchors.yaml
//
//	# Evaluate a single request from the command line
//	gatewright evaluate "refund £2000 to the customer"
//
//	# Replay a recorded trace against the current anchors
//	gatewright replay 7f9c2f0a-...
//
//	# Show version information
//	gatewright version
package main

func main() {
	Execute()
}
