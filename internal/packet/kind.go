package packet

import "fmt"

// Kind is the message discriminator carried as the first slot of every frame.
type Kind uint8

const (
	KindClientKey Kind = iota + 1
	KindLogin
	KindRegister
	KindOk
	KindDeny
	KindWelcome
	KindServerTickRate
	KindMoveUp
	KindMoveRight
	KindMoveDown
	KindMoveLeft
	KindMoveRooms
	KindChat
	KindGrabItem
	KindDropItem
	KindLogout
	KindGoodbye
	KindServerLog
	KindServerModel
	KindWeatherChange

	kindMax
)

var kindNames = [...]string{
	KindClientKey:      "ClientKey",
	KindLogin:          "Login",
	KindRegister:       "Register",
	KindOk:             "Ok",
	KindDeny:           "Deny",
	KindWelcome:        "Welcome",
	KindServerTickRate: "ServerTickRate",
	KindMoveUp:         "MoveUp",
	KindMoveRight:      "MoveRight",
	KindMoveDown:       "MoveDown",
	KindMoveLeft:       "MoveLeft",
	KindMoveRooms:      "MoveRooms",
	KindChat:           "Chat",
	KindGrabItem:       "GrabItem",
	KindDropItem:       "DropItem",
	KindLogout:         "Logout",
	KindGoodbye:        "Goodbye",
	KindServerLog:      "ServerLog",
	KindServerModel:    "ServerModel",
	KindWeatherChange:  "WeatherChange",
}

func (k Kind) String() string {
	if k == 0 || k >= kindMax {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Valid reports whether k names a known message kind.
func (k Kind) Valid() bool {
	return k > 0 && k < kindMax
}
