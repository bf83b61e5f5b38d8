package packet

import "math/big"

// Message is one typed protocol message. The concrete set is closed: every
// variant lives in this file and the codec rejects anything else.
type Message interface {
	Kind() Kind
}

// ClientKey announces a peer's RSA public key. The first message in each
// direction; sent in cleartext.
type ClientKey struct {
	N *big.Int
	E int64
}

// Login requests authentication with stored credentials.
type Login struct {
	Username string
	Password string
}

// Register requests creation of a new user.
type Register struct {
	Username string
	Password string
}

// Ok acknowledges the previous request.
type Ok struct{}

// Deny rejects the previous request with a human-readable reason.
type Deny struct {
	Reason string
}

// Welcome carries the server banner.
type Welcome struct {
	Banner string
}

// ServerTickRate announces the driver cadence in ticks per second.
type ServerTickRate struct {
	TicksPerSecond int64
}

// Movement requests, one tile in the given direction.
type (
	MoveUp    struct{}
	MoveRight struct{}
	MoveDown  struct{}
	MoveLeft  struct{}
)

// MoveRooms tells the client its avatar switched rooms.
type MoveRooms struct {
	RoomID int64
}

// Chat carries a chat line.
type Chat struct {
	Text string
}

// GrabItem asks to pick up whatever item shares the avatar's tile.
type GrabItem struct{}

// DropItem asks to drop the referenced inventory row at the avatar's tile.
type DropItem struct {
	InventoryItemID int64
}

// Logout ends the play session for the named user.
type Logout struct {
	Username string
}

// Goodbye removes an instance from the recipient's view.
type Goodbye struct {
	InstanceID int64
}

// ServerLog is a line for the client's scrolling log.
type ServerLog struct {
	Text string
}

// ServerModel pushes a flattened model record. TypeTag is one of
// User, Room, Player, Instance, InventoryItem; Instance and InventoryItem
// inline their nested entity/item attributes.
type ServerModel struct {
	TypeTag string
	Model   map[string]any
}

// WeatherChange announces the current weather state.
type WeatherChange struct {
	State string
}

func (ClientKey) Kind() Kind      { return KindClientKey }
func (Login) Kind() Kind          { return KindLogin }
func (Register) Kind() Kind       { return KindRegister }
func (Ok) Kind() Kind             { return KindOk }
func (Deny) Kind() Kind           { return KindDeny }
func (Welcome) Kind() Kind        { return KindWelcome }
func (ServerTickRate) Kind() Kind { return KindServerTickRate }
func (MoveUp) Kind() Kind         { return KindMoveUp }
func (MoveRight) Kind() Kind      { return KindMoveRight }
func (MoveDown) Kind() Kind       { return KindMoveDown }
func (MoveLeft) Kind() Kind       { return KindMoveLeft }
func (MoveRooms) Kind() Kind      { return KindMoveRooms }
func (Chat) Kind() Kind           { return KindChat }
func (GrabItem) Kind() Kind       { return KindGrabItem }
func (DropItem) Kind() Kind       { return KindDropItem }
func (Logout) Kind() Kind         { return KindLogout }
func (Goodbye) Kind() Kind        { return KindGoodbye }
func (ServerLog) Kind() Kind      { return KindServerLog }
func (ServerModel) Kind() Kind    { return KindServerModel }
func (WeatherChange) Kind() Kind  { return KindWeatherChange }
