package db

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/moonvale/mud/internal/model"
)

// Memory is an in-process Store. It backs tests and database-less local
// play; the world core cannot tell it apart from Postgres.
type Memory struct {
	mu     sync.Mutex
	nextID int64

	users     map[int64]*model.User
	players   map[int64]*model.Player
	banks     map[int64]*model.Bank
	entities  map[int64]*model.Entity
	instances map[int64]*model.Instance
	rooms     []*model.Room
	items     map[int64]*model.Item // keyed by item id
	invRows   map[int64]*model.InventoryItem
	portals   map[int64]*model.Portal       // keyed by entity id
	nodes     map[int64]*model.ResourceNode // keyed by entity id
	drops     map[int64][]*model.DropTableItem
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:     make(map[int64]*model.User),
		players:   make(map[int64]*model.Player),
		banks:     make(map[int64]*model.Bank),
		entities:  make(map[int64]*model.Entity),
		instances: make(map[int64]*model.Instance),
		items:     make(map[int64]*model.Item),
		invRows:   make(map[int64]*model.InventoryItem),
		portals:   make(map[int64]*model.Portal),
		nodes:     make(map[int64]*model.ResourceNode),
		drops:     make(map[int64][]*model.DropTableItem),
	}
}

func (m *Memory) alloc() int64 {
	m.nextID++
	return m.nextID
}

func (m *Memory) UserByName(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.users {
		if other.Username == u.Username {
			return fmt.Errorf("user %q already exists", u.Username)
		}
	}
	u.ID = m.alloc()
	m.users[u.ID] = u
	return nil
}

func (m *Memory) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *Memory) PlayerByUser(_ context.Context, userID int64) (*model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) CreatePlayer(_ context.Context, p *model.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.alloc()
	m.players[p.ID] = p
	return nil
}

func (m *Memory) CreateBank(_ context.Context, b *model.Bank) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = m.alloc()
	m.banks[b.ID] = b
	return nil
}

func (m *Memory) CreateEntity(_ context.Context, e *model.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.alloc()
	m.entities[e.ID] = e
	return nil
}

func (m *Memory) DeleteEntity(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entities, id)
	return nil
}

func (m *Memory) InstanceByEntity(_ context.Context, entityID int64) (*model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, in := range m.instances {
		if in.Entity.ID == entityID {
			return in, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateInstance(_ context.Context, in *model.Instance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if in.Entity == nil {
		return fmt.Errorf("instance needs an entity")
	}
	in.ID = m.alloc()
	m.instances[in.ID] = in
	return nil
}

func (m *Memory) SaveInstance(_ context.Context, in *model.Instance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.instances[in.ID]; !ok {
		return ErrNotFound
	}
	m.instances[in.ID] = in
	return nil
}

func (m *Memory) DeleteInstance(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.instances, id)
	return nil
}

func (m *Memory) Instances(_ context.Context) ([]*model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Instance, 0, len(m.instances))
	for _, in := range m.instances {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateRoom registers a room. Not part of the Store contract; rooms are
// seeded, never created by gameplay.
func (m *Memory) CreateRoom(r *model.Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == 0 {
		r.ID = m.alloc()
	}
	m.rooms = append(m.rooms, r)
}

func (m *Memory) Rooms(_ context.Context) ([]*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Room, len(m.rooms))
	copy(out, m.rooms)
	return out, nil
}

// CreateItem registers an item definition (seed helper).
func (m *Memory) CreateItem(it *model.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it.ID == 0 {
		it.ID = m.alloc()
	}
	m.items[it.ID] = it
}

func (m *Memory) ItemByEntity(_ context.Context, entityID int64) (*model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.Entity.ID == entityID {
			return it, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) InventoryByPlayer(_ context.Context, playerID int64) ([]*model.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.InventoryItem
	for _, row := range m.invRows {
		if row.PlayerID == playerID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) CreateInventoryItem(_ context.Context, row *model.InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row.ID = m.alloc()
	m.invRows[row.ID] = row
	return nil
}

func (m *Memory) UpdateInventoryItem(_ context.Context, row *model.InventoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.invRows[row.ID]; !ok {
		return ErrNotFound
	}
	m.invRows[row.ID] = row
	return nil
}

func (m *Memory) DeleteInventoryItem(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.invRows, id)
	return nil
}

// CreatePortal registers a portal definition (seed helper).
func (m *Memory) CreatePortal(p *model.Portal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == 0 {
		p.ID = m.alloc()
	}
	m.portals[p.EntityID] = p
}

func (m *Memory) PortalByEntity(_ context.Context, entityID int64) (*model.Portal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.portals[entityID]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// CreateNode registers a resource node definition (seed helper).
func (m *Memory) CreateNode(n *model.ResourceNode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == 0 {
		n.ID = m.alloc()
	}
	m.nodes[n.EntityID] = n
}

func (m *Memory) NodeByEntity(_ context.Context, entityID int64) (*model.ResourceNode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[entityID]
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

// CreateDropTableItem registers one loot table line (seed helper).
func (m *Memory) CreateDropTableItem(d *model.DropTableItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == 0 {
		d.ID = m.alloc()
	}
	m.drops[d.DropTableID] = append(m.drops[d.DropTableID], d)
}

func (m *Memory) DropTableItems(_ context.Context, dropTableID int64) ([]*model.DropTableItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.DropTableItem, len(m.drops[dropTableID]))
	copy(out, m.drops[dropTableID])
	return out, nil
}
