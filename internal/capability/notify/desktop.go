package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/oshokin/med-reminder/internal/capability"
)

const (
	// notificationsName is the well-known bus name of the notification daemon.
	notificationsName = "org.freedesktop.Notifications"
	// notificationsPath is the object path of the notification daemon.
	notificationsPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	// notifyMethod raises a notification.
	notifyMethod = notificationsName + ".Notify"
	// nameHasOwnerMethod asks the bus whether a daemon owns a name.
	nameHasOwnerMethod = "org.freedesktop.DBus.NameHasOwner"
	// urgencyCritical keeps medication reminders on screen until dismissed.
	urgencyCritical byte = 2
	// defaultExpiry lets the server pick the expiry.
	defaultExpiry int32 = -1
)

// Desktop raises notifications through org.freedesktop.Notifications.
type Desktop struct {
	// appName is shown by the notification daemon as the sender.
	appName string
	// icon is an icon name or file URI.
	icon string

	// mu protects conn and state.
	mu sync.Mutex
	// conn is the session bus connection, opened by Request.
	conn *dbus.Conn
	// state is undetermined until Request probed the bus.
	state capability.Permission
}

// NewDesktop creates a desktop notifier. The bus is not contacted until Request.
func NewDesktop(appName, icon string) *Desktop {
	return &Desktop{
		appName: appName,
		icon:    icon,
		state:   capability.PermissionUndetermined,
	}
}

// Permission reports the last probed state.
func (d *Desktop) Permission(context.Context) capability.Permission {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.state
}

// Request connects to the session bus and checks a notification daemon is running.
func (d *Desktop) Request(ctx context.Context) (capability.Permission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			d.state = capability.PermissionDenied

			return d.state, fmt.Errorf("connect session bus: %w", err)
		}

		d.conn = conn
	}

	var hasOwner bool

	err := d.conn.BusObject().CallWithContext(ctx, nameHasOwnerMethod, 0, notificationsName).Store(&hasOwner)
	if err != nil {
		d.state = capability.PermissionDenied

		return d.state, fmt.Errorf("query notification daemon: %w", err)
	}

	if hasOwner {
		d.state = capability.PermissionGranted
	} else {
		d.state = capability.PermissionDenied
	}

	return d.state, nil
}

// Raise shows a critical-urgency notification.
func (d *Desktop) Raise(ctx context.Context, title, body string) error {
	d.mu.Lock()
	conn := d.conn
	d.mu.Unlock()

	if conn == nil {
		return capability.ErrUnavailable
	}

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgencyCritical),
	}

	call := conn.Object(notificationsName, notificationsPath).CallWithContext(
		ctx,
		notifyMethod,
		0,
		d.appName,
		uint32(0),
		d.icon,
		title,
		body,
		[]string{},
		hints,
		defaultExpiry,
	)
	if call.Err != nil {
		return fmt.Errorf("raise desktop notification: %w", call.Err)
	}

	return nil
}

// Close releases the bus connection.
func (d *Desktop) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}

	err := d.conn.Close()
	d.conn = nil

	return err
}
