// Package capability defines the host capabilities an alarm depends on:
// audio playback, speech synthesis and system notifications.
//
// Real adapters live in the audio, speech and notify sub-packages. This
// package also ships no-op adapters that only log, and capabilitytest
// provides recording fakes for tests.
package capability
