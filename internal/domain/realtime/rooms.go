// Package realtime contains the room naming scheme and live-event catalog
// shared by the event router and its transports. Rooms are logical delivery
// targets resolved on demand; nothing in this package is persisted.
package realtime

import (
	"fmt"

	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
)

// Room identifies a group of live connections.
type Room string

// BroadcastRoom addresses every connected client.
const BroadcastRoom Room = "broadcast"

// UserRoom addresses a single user's general channel.
func UserRoom(userID string) Room {
	return Room("user:" + userID)
}

// RoleRoom addresses every connected user holding the given role.
func RoleRoom(role model.UserRole) Room {
	return Room("role:" + role.String())
}

// NotificationRoom addresses a user's notification-lifecycle channel,
// distinct from the general user channel.
func NotificationRoom(userID string) Room {
	return Room("notification:" + userID)
}

// AdminRooms resolves the admin/manager audience.
func AdminRooms() []Room {
	roles := model.AdminRoles()
	rooms := make([]Room, 0, len(roles))
	for _, role := range roles {
		rooms = append(rooms, RoleRoom(role))
	}
	return rooms
}

// String returns the room name.
func (r Room) String() string {
	return string(r)
}

// GoString implements fmt.GoStringer for clearer test failure output.
func (r Room) GoString() string {
	return fmt.Sprintf("realtime.Room(%q)", string(r))
}
