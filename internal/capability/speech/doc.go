// Package speech implements the speech capability with Google Cloud
// Text-to-Speech. Synthesized MP3 audio is played through the audio player.
//
// Credentials follow the Google client conventions
// (GOOGLE_APPLICATION_CREDENTIALS or the metadata server).
package speech
