// Package pipeline drives the per-frame detection loop as an explicit state
// machine: Initializing -> Running -> Draining -> Terminated.
//
// Running pulls one frame, extracts shapes, reports, displays, and then
// checks for a stop request; that check is the only cancellation point.
// The collaborators (capture.Source, vision.Extractor, display.Sink,
// writers.Sink) are interfaces so the loop is testable with bounded fakes.
package pipeline
