// Package a2ui models the declarative UI message protocol an agent emits to
// drive a renderer: beginRendering, surfaceUpdate and dataModelUpdate.
//
// Messages and components travel as single-key JSON objects. On the Go side
// each family is a closed set of variants behind a sealed interface
// (Message, Component); the Envelope and ComponentSpec wire types convert
// between the two and reject objects that set zero or several keys.
package a2ui
