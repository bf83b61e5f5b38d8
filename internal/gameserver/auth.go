package gameserver

import (
	"errors"

	"github.com/moonvale/mud/internal/db"
	"github.com/moonvale/mud/internal/model"
	"github.com/moonvale/mud/internal/packet"
)

// maxCredentialLen bounds stored usernames and passwords.
const maxCredentialLen = 255

// login authenticates c and, on success, binds it to its player and enters
// the avatar's current room.
func (w *World) login(c *Conn, username, password string) {
	if isBlank(username) || password == "" {
		c.Queue(packet.Deny{Reason: "Username or password is blank"})
		return
	}

	user, err := w.store.UserByName(w.ctx, username)
	if errors.Is(err, db.ErrNotFound) {
		c.Queue(packet.Deny{Reason: "I don't know anybody by that name"})
		return
	}
	if err != nil {
		w.log.Error("looking up user", "username", username, "error", err)
		c.Queue(packet.Deny{Reason: "Error. Please try again later."})
		return
	}

	player, err := w.store.PlayerByUser(w.ctx, user.ID)
	if err != nil {
		w.log.Error("looking up player", "user", user.ID, "error", err)
		c.Queue(packet.Deny{Reason: "Error. Please try again later."})
		return
	}

	if _, bound := w.online[player.ID]; bound {
		c.Queue(packet.Deny{Reason: username + " is already inhabiting this realm."})
		return
	}

	if !db.VerifyPassword(user.PasswordHash, password) {
		c.Queue(packet.Deny{Reason: "Incorrect password"})
		return
	}

	instance := w.instanceByEntity(player.EntityID)
	if instance == nil {
		w.log.Error("player instance missing from world", "player", player.ID)
		c.Queue(packet.Deny{Reason: "Error. Please try again later."})
		return
	}

	rows, err := w.store.InventoryByPlayer(w.ctx, player.ID)
	if err != nil {
		w.log.Error("loading inventory", "player", player.ID, "error", err)
		c.Queue(packet.Deny{Reason: "Error. Please try again later."})
		return
	}

	c.user = user
	c.player = player
	c.instance = instance
	c.inventory = model.NewInventory(player.ID, rows)
	w.online[player.ID] = c

	w.log.Info("login", "username", username, "player", player.ID)

	c.Queue(packet.Ok{})
	w.moveRooms(c, instance.RoomID)
}

// register creates the full account graph: User, avatar Entity, Instance at
// (0,0) of the first room, Player and Bank. The connection stays in
// GetEntry either way.
func (w *World) register(c *Conn, username, password string) {
	if isBlank(username) || password == "" {
		c.Queue(packet.Deny{Reason: "Username or password is blank"})
		return
	}
	if len(username) > maxCredentialLen || len(password) > maxCredentialLen {
		c.Queue(packet.Deny{Reason: "Error. Value too long."})
		return
	}

	if _, err := w.store.UserByName(w.ctx, username); err == nil {
		c.Queue(packet.Deny{Reason: "Somebody else already goes by that name"})
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		w.log.Error("looking up user", "username", username, "error", err)
		c.Queue(packet.Deny{Reason: "Error. Please try again later."})
		return
	}

	if len(w.rooms) == 0 {
		c.Queue(packet.Deny{Reason: "Error. Please try again later."})
		return
	}
	initialRoom := w.rooms[0]

	hash, err := db.HashPassword(password)
	if err != nil {
		w.log.Error("hashing password", "error", err)
		c.Queue(packet.Deny{Reason: "Error. Please try again later."})
		return
	}

	user := &model.User{Username: username, PasswordHash: hash}
	if err := w.store.CreateUser(w.ctx, user); err != nil {
		w.log.Error("creating user", "username", username, "error", err)
		c.Queue(packet.Deny{Reason: "Error. Please try again later."})
		return
	}

	entity := &model.Entity{Typename: model.TypePlayer, Name: username}
	if err := w.store.CreateEntity(w.ctx, entity); err != nil {
		w.log.Error("creating entity", "username", username, "error", err)
		w.rollbackRegistration(user.ID, 0, 0)
		c.Queue(packet.Deny{Reason: "Error. Please try again later."})
		return
	}

	instance := &model.Instance{Entity: entity, RoomID: initialRoom.ID, Y: 0, X: 0, Amount: 1}
	if err := w.store.CreateInstance(w.ctx, instance); err != nil {
		w.log.Error("creating instance", "username", username, "error", err)
		w.rollbackRegistration(user.ID, entity.ID, 0)
		c.Queue(packet.Deny{Reason: "Error. Please try again later."})
		return
	}

	player := &model.Player{UserID: user.ID, EntityID: entity.ID}
	if err := w.store.CreatePlayer(w.ctx, player); err != nil {
		w.log.Error("creating player", "username", username, "error", err)
		w.rollbackRegistration(user.ID, entity.ID, instance.ID)
		c.Queue(packet.Deny{Reason: "Error. Please try again later."})
		return
	}

	if err := w.store.CreateBank(w.ctx, &model.Bank{PlayerID: player.ID}); err != nil {
		w.log.Error("creating bank", "username", username, "error", err)
	}

	w.live[initialRoom.ID][instance.ID] = instance
	w.log.Info("registered", "username", username, "player", player.ID)
	c.Queue(packet.Ok{})
}

// rollbackRegistration undoes a partial registration so a failed attempt
// leaves no orphaned rows. Zero ids are skipped.
func (w *World) rollbackRegistration(userID, entityID, instanceID int64) {
	if instanceID != 0 {
		if err := w.store.DeleteInstance(w.ctx, instanceID); err != nil {
			w.log.Error("rolling back instance", "instance", instanceID, "error", err)
		}
	}
	if entityID != 0 {
		if err := w.store.DeleteEntity(w.ctx, entityID); err != nil {
			w.log.Error("rolling back entity", "entity", entityID, "error", err)
		}
	}
	if userID != 0 {
		if err := w.store.DeleteUser(w.ctx, userID); err != nil {
			w.log.Error("rolling back user", "user", userID, "error", err)
		}
	}
}

// logout detaches c from its player and returns it to GetEntry. The avatar
// instance stays in the world at its last position; transport loss funnels
// through here too.
func (w *World) logout(c *Conn) {
	if c.state != StatePlay {
		return
	}

	c.Queue(packet.Ok{})

	if c.instance != nil {
		w.deliverRoom(c.instance.RoomID, packet.Goodbye{InstanceID: c.instance.ID}, c)
		w.saveInstance(c.instance)
	}

	w.cancelAction(c)
	w.sched.CancelOwner(c.id)
	if c.player != nil {
		delete(w.online, c.player.ID)
	}

	w.log.Info("logout", "username", c.user.Username)

	c.user = nil
	c.player = nil
	c.instance = nil
	c.inventory = nil
	c.roomMap = nil
	c.visible = make(map[int64]*model.Instance)
	c.state = StateGetEntry
}
