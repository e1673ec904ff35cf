// Package textutil provides title cleanup, profanity masking, hashtag
// formatting, and filename sanitization for output metadata and overlays.
package textutil
