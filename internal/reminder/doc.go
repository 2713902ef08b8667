// Package reminder keeps the registry of armed reminder timers and in-flight
// alarms. A Scheduler arms one timer per parsed time of day, fires alarms from
// a single Run loop and re-arms daily reminders for the next occurrence.
package reminder
