// Package alarm plays a medication alarm: an alert sound, then the spoken
// reminder, with a system notification raised alongside.
//
// The sequence runs in its own goroutine and is controlled through the
// returned Playback handle.
package alarm
