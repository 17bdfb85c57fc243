// Package scene defines the scene record shared between the project store and
// the compositor, plus the pure eligibility filter and timeline arithmetic the
// timeline driver runs before allocating any resources.
package scene
