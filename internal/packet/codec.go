package packet

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned by Decode for discriminators outside the
// closed message set.
var ErrUnknownKind = errors.New("unknown message kind")

// Encode serialises msg as the kind slot followed by its payload slots in
// declaration order.
func Encode(msg Message) ([]byte, error) {
	w := NewWriter(64)
	if err := w.WriteKind(msg.Kind()); err != nil {
		return nil, err
	}

	var err error
	switch m := msg.(type) {
	case ClientKey:
		if err = w.WriteBigInt(m.N); err == nil {
			err = w.WriteInt(m.E)
		}
	case Login:
		if err = w.WriteString(m.Username); err == nil {
			err = w.WriteString(m.Password)
		}
	case Register:
		if err = w.WriteString(m.Username); err == nil {
			err = w.WriteString(m.Password)
		}
	case Ok, GrabItem, MoveUp, MoveRight, MoveDown, MoveLeft:
		// no payload
	case Deny:
		err = w.WriteString(m.Reason)
	case Welcome:
		err = w.WriteString(m.Banner)
	case ServerTickRate:
		err = w.WriteInt(m.TicksPerSecond)
	case MoveRooms:
		err = w.WriteInt(m.RoomID)
	case Chat:
		err = w.WriteString(m.Text)
	case DropItem:
		err = w.WriteInt(m.InventoryItemID)
	case Logout:
		err = w.WriteString(m.Username)
	case Goodbye:
		err = w.WriteInt(m.InstanceID)
	case ServerLog:
		err = w.WriteString(m.Text)
	case ServerModel:
		if err = w.WriteString(m.TypeTag); err == nil {
			err = w.WriteDict(m.Model)
		}
	case WeatherChange:
		err = w.WriteString(m.State)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, msg)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", msg.Kind(), err)
	}

	return w.Bytes(), nil
}

// Decode parses one message from data. Unknown discriminators are rejected
// with ErrUnknownKind.
func Decode(data []byte) (Message, error) {
	r := NewReader(data)
	kind, err := r.ReadKind()
	if err != nil {
		return nil, fmt.Errorf("reading discriminator: %w", err)
	}

	msg, err := decodeBody(kind, r)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", kind, err)
	}
	return msg, nil
}

func decodeBody(kind Kind, r *Reader) (Message, error) {
	switch kind {
	case KindClientKey:
		n, err := r.ReadBigInt()
		if err != nil {
			return nil, err
		}
		e, err := r.ReadInt()
		if err != nil {
			return nil, err
		}
		return ClientKey{N: n, E: e}, nil
	case KindLogin:
		user, pass, err := readCredentials(r)
		if err != nil {
			return nil, err
		}
		return Login{Username: user, Password: pass}, nil
	case KindRegister:
		user, pass, err := readCredentials(r)
		if err != nil {
			return nil, err
		}
		return Register{Username: user, Password: pass}, nil
	case KindOk:
		return Ok{}, nil
	case KindDeny:
		reason, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return Deny{Reason: reason}, nil
	case KindWelcome:
		banner, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return Welcome{Banner: banner}, nil
	case KindServerTickRate:
		tps, err := r.ReadInt()
		if err != nil {
			return nil, err
		}
		return ServerTickRate{TicksPerSecond: tps}, nil
	case KindMoveUp:
		return MoveUp{}, nil
	case KindMoveRight:
		return MoveRight{}, nil
	case KindMoveDown:
		return MoveDown{}, nil
	case KindMoveLeft:
		return MoveLeft{}, nil
	case KindMoveRooms:
		id, err := r.ReadInt()
		if err != nil {
			return nil, err
		}
		return MoveRooms{RoomID: id}, nil
	case KindChat:
		text, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return Chat{Text: text}, nil
	case KindGrabItem:
		return GrabItem{}, nil
	case KindDropItem:
		id, err := r.ReadInt()
		if err != nil {
			return nil, err
		}
		return DropItem{InventoryItemID: id}, nil
	case KindLogout:
		user, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return Logout{Username: user}, nil
	case KindGoodbye:
		id, err := r.ReadInt()
		if err != nil {
			return nil, err
		}
		return Goodbye{InstanceID: id}, nil
	case KindServerLog:
		text, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return ServerLog{Text: text}, nil
	case KindServerModel:
		tag, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		model, err := r.ReadDict()
		if err != nil {
			return nil, err
		}
		return ServerModel{TypeTag: tag, Model: model}, nil
	case KindWeatherChange:
		state, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return WeatherChange{State: state}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
}

func readCredentials(r *Reader) (string, string, error) {
	user, err := r.ReadString()
	if err != nil {
		return "", "", err
	}
	pass, err := r.ReadString()
	if err != nil {
		return "", "", err
	}
	return user, pass, nil
}
