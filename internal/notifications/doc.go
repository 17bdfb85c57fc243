// Package notifications delivers composition lifecycle events to an ntfy
// topic when one is configured.
package notifications
