package session

import (
	"encoding/json"
	"fmt"
)

// Role classifies what a participant does inside a room.
type Role uint8

const (
	RoleViewer Role = iota
	RoleController
	RoleSessionOwner
)

const (
	roleViewerName       = "viewer"
	roleControllerName   = "controller"
	roleSessionOwnerName = "session-owner"
)

// ParseRole maps a wire role string to its variant. Anything unrecognised
// degrades to viewer: it gets no input path and no host preference.
func ParseRole(s string) Role {
	switch s {
	case roleSessionOwnerName:
		return RoleSessionOwner
	case roleControllerName:
		return RoleController
	default:
		return RoleViewer
	}
}

func (r Role) String() string {
	switch r {
	case RoleSessionOwner:
		return roleSessionOwnerName
	case RoleController:
		return roleControllerName
	default:
		return roleViewerName
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("role: %w", err)
	}
	*r = ParseRole(s)
	return nil
}
