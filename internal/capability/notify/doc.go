// Package notify implements the notification capability.
//
// Desktop raises freedesktop notifications over the D-Bus session bus,
// Telegram sends the reminder to a chat, and Multi fans out to several
// notifiers at once.
package notify
