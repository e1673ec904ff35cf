// Package logging wires log/slog with a console handler tuned for pipeline
// output plus a JSON handler for machine consumption.
//
// Loggers carry a component attribute and, through WithContext, the channel
// label / content identifier / stage of the item in flight so batch runs stay
// attributable when channels interleave.
package logging
