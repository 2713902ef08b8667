// Package reminder contains the core domain types of the medication reminder.
//
// It defines the tracked Item with its schedule descriptor, the parsed
// TimeSpec, VoiceOptions with merge and normalization rules, read-only views
// of armed timers (TimerInfo), rows of the fired-alarm history (FiredAlarm)
// and the Actor attached to control-API mutations.
package reminder
