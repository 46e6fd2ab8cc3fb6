package ws

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	NamespaceClient = "client"
	NamespaceTeam   = "team"
)

// ClientRoom is the room of one customer conversation.
func ClientRoom(clientID string) string {
	return NamespaceClient + ":" + clientID
}

// TeamRoom is the room of one internal team.
func TeamRoom(teamID string) string {
	return NamespaceTeam + ":" + teamID
}

func roomID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseRoom splits a room identifier into its namespace and entity id.
// Identifiers outside the client and team namespaces fail with ErrInvalidRoom.
func ParseRoom(room string) (string, string, error) {
	namespace, entityID, ok := strings.Cut(room, ":")
	if !ok || entityID == "" || strings.ContainsAny(entityID, ": \t\r\n") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRoom, room)
	}

	switch namespace {
	case NamespaceClient, NamespaceTeam:
		return namespace, entityID, nil
	default:
		return "", "", fmt.Errorf("%w: unknown namespace %q", ErrInvalidRoom, namespace)
	}
}

func ValidateRoom(room string) error {
	_, _, err := ParseRoom(room)
	return err
}
