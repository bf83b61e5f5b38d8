// Package db implements the persistence contract the world core depends on.
package db

import (
	"context"
	"errors"

	"github.com/moonvale/mud/internal/model"
)

// ErrNotFound is returned by lookups for rows that do not exist.
var ErrNotFound = errors.New("not found")

// Store is the CRUD contract between the world core and persistence.
// Two implementations ship: Postgres (production) and Memory (tests,
// local play).
type Store interface {
	// Users and players.
	UserByName(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id int64) error
	PlayerByUser(ctx context.Context, userID int64) (*model.Player, error)
	CreatePlayer(ctx context.Context, p *model.Player) error
	CreateBank(ctx context.Context, b *model.Bank) error

	// Entities and their placements. Instances come back with the Entity
	// resolved.
	CreateEntity(ctx context.Context, e *model.Entity) error
	DeleteEntity(ctx context.Context, id int64) error
	InstanceByEntity(ctx context.Context, entityID int64) (*model.Instance, error)
	CreateInstance(ctx context.Context, in *model.Instance) error
	SaveInstance(ctx context.Context, in *model.Instance) error
	DeleteInstance(ctx context.Context, id int64) error
	Instances(ctx context.Context) ([]*model.Instance, error)

	// Rooms in creation order; the first is where new players spawn.
	Rooms(ctx context.Context) ([]*model.Room, error)

	// Items and inventories. Rows come back with Item and its Entity
	// resolved.
	ItemByEntity(ctx context.Context, entityID int64) (*model.Item, error)
	InventoryByPlayer(ctx context.Context, playerID int64) ([]*model.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, row *model.InventoryItem) error
	UpdateInventoryItem(ctx context.Context, row *model.InventoryItem) error
	DeleteInventoryItem(ctx context.Context, id int64) error

	// Interactables.
	PortalByEntity(ctx context.Context, entityID int64) (*model.Portal, error)
	NodeByEntity(ctx context.Context, entityID int64) (*model.ResourceNode, error)
	DropTableItems(ctx context.Context, dropTableID int64) ([]*model.DropTableItem, error)
}
