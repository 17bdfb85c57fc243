// Package services holds shared plumbing for components that talk to external
// tools: sentinel error markers and the Wrap helper that tags failures with
// enough context to classify them at the composition boundary.
package services
