package gameserver

import (
	"strings"

	"github.com/moonvale/mud/internal/crypto"
	"github.com/moonvale/mud/internal/model"
	"github.com/moonvale/mud/internal/packet"
)

// dispatch advances c's session machine by one message. Dispatch is total
// over (state, kind): combinations with no meaning are dropped.
func (w *World) dispatch(c *Conn, msg packet.Message) {
	switch c.state {
	case StateGetEntry:
		w.handleGetEntry(c, msg)
	case StatePlay:
		w.handlePlay(c, msg)
	}
}

func (w *World) handleGetEntry(c *Conn, msg packet.Message) {
	switch m := msg.(type) {
	case packet.ClientKey:
		pub, err := crypto.PublicKeyFromParts(m.N, m.E)
		if err != nil {
			c.log.Warn("rejecting client key", "error", err)
			return
		}
		c.tr.SetPeerKey(pub)
		// the key reply goes out in cleartext; everything after is encrypted
		c.Queue(packet.ClientKey{N: w.serverKeyN(), E: w.serverKeyE()})
		c.Queue(packet.ServerTickRate{TicksPerSecond: int64(w.cfg.TickRate)})
		c.Queue(packet.Welcome{Banner: w.cfg.WelcomeBanner})
	case packet.Login:
		w.login(c, m.Username, m.Password)
	case packet.Register:
		w.register(c, m.Username, m.Password)
	}
}

func (w *World) handlePlay(c *Conn, msg packet.Message) {
	switch m := msg.(type) {
	case packet.MoveUp:
		w.move(c, -1, 0)
	case packet.MoveRight:
		w.move(c, 0, 1)
	case packet.MoveDown:
		w.move(c, 1, 0)
	case packet.MoveLeft:
		w.move(c, 0, -1)
	case packet.Chat:
		w.chat(c, m.Text)
	case packet.GrabItem:
		w.grabItem(c)
	case packet.DropItem:
		w.dropItem(c, m.InventoryItemID)
	case packet.Logout:
		if c.user != nil && m.Username == c.user.Username {
			w.logout(c)
		}
	case packet.Goodbye:
		w.departOther(c, m.InstanceID)
	case packet.ServerLog, packet.WeatherChange:
		// broadcast injections pass straight through to the client
		c.Queue(msg)
	}
}

// chatLimit caps the broadcast message body in characters.
const chatLimit = 80

func (w *World) chat(c *Conn, text string) {
	if isBlank(text) {
		return
	}
	line := c.instance.Entity.Name + " says: " + truncateRunes(text, chatLimit)
	w.deliverRoom(c.instance.RoomID, packet.ServerLog{Text: line}, nil)
	w.log.Info("chat", "user", c.user.Username, "room", c.instance.RoomID)
}

// departOther handles a Goodbye arriving at an in-play connection: drop the
// instance from the local view and forward the message to the client.
func (w *World) departOther(c *Conn, instanceID int64) {
	inst, ok := c.visible[instanceID]
	if ok {
		delete(c.visible, instanceID)
		if inst.Entity.Typename == model.TypePlayer {
			c.Queue(packet.ServerLog{Text: inst.Entity.Name + " has departed."})
		}
	}
	c.Queue(packet.Goodbye{InstanceID: instanceID})
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
