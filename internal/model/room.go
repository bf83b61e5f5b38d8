package model

// Room is one independent map. The tile grid itself is loaded from
// FileName by the room-map loader; this record is only the identity.
type Room struct {
	ID       int64
	Name     string
	FileName string
}

// Dict returns the wire representation for ServerModel payloads.
func (r *Room) Dict() map[string]any {
	return map[string]any{
		"id":        r.ID,
		"name":      r.Name,
		"file_name": r.FileName,
	}
}
