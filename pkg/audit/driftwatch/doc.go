// Package driftwatch periodically replays recent decision traces and flags
// the ones whose outcome or anchor content has drifted since they were
// recorded. It is read-only over the audit trail; drift is surfaced through
// logs and metrics, never by rewriting history.
package driftwatch
