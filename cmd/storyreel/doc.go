// Command storyreel composes narrated story scenes into videos and manages
// the projects they belong to.
package main
