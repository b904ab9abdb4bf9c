package models

// EventType distinguishes notifications pushed to room subscribers.
type EventType string

const (
	EventFileUpdated EventType = "fileUpdated"
	EventFileDeleted EventType = "fileDeleted"
)

// Event is a file mutation broadcast to every connection in a project room.
// Content and Version are empty for deletions.
type Event struct {
	Type        EventType
	ProjectID   string
	ProjectName string
	Path        string
	Content     Content
	Version     int64
}
