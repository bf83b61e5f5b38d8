package model

// User is an account: unique case-sensitive username plus a salted,
// key-stretched password digest.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

// Player binds a User to its avatar Entity. One per user.
type Player struct {
	ID       int64
	UserID   int64
	EntityID int64
}

// Bank is created per player at registration. Balance handling lives with
// the persistence layer.
type Bank struct {
	ID       int64
	PlayerID int64
}

// PlayerDict returns the wire representation for ServerModel payloads.
func PlayerDict(p *Player, e *Entity) map[string]any {
	return map[string]any{
		"id":      p.ID,
		"user_id": p.UserID,
		"entity":  e.Dict(),
	}
}
