package live

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// Message types.
const (
	TypeJoin  = "join"
	TypeLeave = "leave"

	TypeJoined      = "joined"
	TypeLeft        = "left"
	TypeError       = "error"
	TypeFileUpdated = "fileUpdated"
	TypeFileDeleted = "fileDeleted"
)

// Message is the flattened form of every frame on the stream. Unused fields
// stay empty and are left out of the wire struct.
type Message struct {
	Type        string
	ProjectName string
	Owner       string
	Path        string
	Content     string
	Encoding    string
	Version     int64
	Error       string
}

func (m Message) ToStruct() *structpb.Struct {
	fields := map[string]*structpb.Value{
		"type": structpb.NewStringValue(m.Type),
	}
	put := func(key, v string) {
		if v != "" {
			fields[key] = structpb.NewStringValue(v)
		}
	}
	put("projectName", m.ProjectName)
	put("owner", m.Owner)
	put("path", m.Path)
	put("encoding", m.Encoding)
	put("error", m.Error)
	if m.Type == TypeFileUpdated {
		fields["content"] = structpb.NewStringValue(m.Content)
	}
	if m.Version != 0 {
		fields["version"] = structpb.NewNumberValue(float64(m.Version))
	}
	return &structpb.Struct{Fields: fields}
}

// FromStruct reads a Message back. Fields of the wrong kind read as empty.
func FromStruct(s *structpb.Struct) Message {
	f := s.GetFields()
	str := func(key string) string {
		return f[key].GetStringValue()
	}
	return Message{
		Type:        str("type"),
		ProjectName: str("projectName"),
		Owner:       str("owner"),
		Path:        str("path"),
		Content:     str("content"),
		Encoding:    str("encoding"),
		Version:     int64(f["version"].GetNumberValue()),
		Error:       str("error"),
	}
}
