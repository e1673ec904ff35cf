// Package music selects background tracks for silent clips. Selection walks
// a channel's music library recursively, picks a track through an injected
// random source, and sizes it to the clip duration by looping short tracks.
package music
