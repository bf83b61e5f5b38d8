package model

// WireOOB is the y value reported on the wire for an instance that is
// awaiting respawn. Internally the state is explicit; the sentinel survives
// only in the client-facing dict.
const WireOOB = -32

// InstanceState says whether an instance is in play or parked for respawn.
type InstanceState int

const (
	// InstanceAlive: the instance occupies (Y, X) in its room.
	InstanceAlive InstanceState = iota
	// InstanceAwaitingRespawn: harvested/consumed; invisible and
	// non-interactable until the respawn timer restores it.
	InstanceAwaitingRespawn
)

// Instance is a live placement of an Entity in a Room. It belongs to
// exactly one room's live map at a time.
type Instance struct {
	ID          int64
	Entity      *Entity
	RoomID      int64
	Y, X        int
	Amount      int64
	RespawnTime int64 // seconds until respawn after harvest; 0 = never respawns

	state InstanceState
	// original coordinates, restored on respawn
	homeY, homeX int
}

// Alive reports whether the instance is in play.
func (in *Instance) Alive() bool {
	return in.state == InstanceAlive
}

// BeginRespawn parks the instance out of play, remembering its coordinates.
func (in *Instance) BeginRespawn() {
	in.homeY, in.homeX = in.Y, in.X
	in.state = InstanceAwaitingRespawn
}

// CompleteRespawn restores the instance at its original coordinates.
func (in *Instance) CompleteRespawn() {
	in.Y, in.X = in.homeY, in.homeX
	in.state = InstanceAlive
}

// At reports whether the instance is in play on the given tile.
func (in *Instance) At(y, x int) bool {
	return in.state == InstanceAlive && in.Y == y && in.X == x
}

// Dict returns the wire representation for ServerModel payloads, with the
// entity attributes inlined. An instance awaiting respawn reports the OOB
// sentinel so older clients keep working.
func (in *Instance) Dict() map[string]any {
	y := in.Y
	if in.state == InstanceAwaitingRespawn {
		y = WireOOB
	}
	return map[string]any{
		"id":           in.ID,
		"entity":       in.Entity.Dict(),
		"room_id":      in.RoomID,
		"y":            y,
		"x":            in.X,
		"amount":       in.Amount,
		"respawn_time": in.RespawnTime,
	}
}
