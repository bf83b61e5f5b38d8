package gameserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moonvale/mud/internal/config"
	"github.com/moonvale/mud/internal/crypto"
	"github.com/moonvale/mud/internal/db"
	"github.com/moonvale/mud/internal/model"
	"github.com/moonvale/mud/internal/packet"
)

var (
	testKeysOnce sync.Once
	testKeysVal  *crypto.KeyPair
)

// testKeys generates one RSA pair for the whole test run.
func testKeys(t *testing.T) *crypto.KeyPair {
	t.Helper()
	testKeysOnce.Do(func() {
		kp, err := crypto.GenerateKeyPair()
		if err != nil {
			t.Fatalf("generating test keys: %v", err)
		}
		testKeysVal = kp
	})
	return testKeysVal
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTestMap writes a hxw room map with the given solid tiles.
func writeTestMap(t *testing.T, dir, fileName string, h, w int, solid [][2]int) {
	t.Helper()

	grid := make([][]string, h)
	for y := range grid {
		grid[y] = make([]string, w)
		for x := range grid[y] {
			grid[y][x] = "NOTHING"
		}
	}
	for _, tile := range solid {
		grid[tile[0]][tile[1]] = "ROCK"
	}

	data, err := json.Marshal(map[string]any{
		"name":   fileName,
		"size":   [2]int{h, w},
		"layers": map[string]any{"solid": grid},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), data, 0o644))
}

type fixture struct {
	t      *testing.T
	w      *World
	store  *db.Memory
	nextID int64
}

type fixtureOpts struct {
	solid [][2]int // solid tiles in the first room
}

func newFixture(t *testing.T, opts fixtureOpts) *fixture {
	t.Helper()

	dir := t.TempDir()
	writeTestMap(t, dir, "forest.json", 12, 12, opts.solid)
	writeTestMap(t, dir, "cave.json", 12, 12, nil)

	store := db.NewMemory()
	store.CreateRoom(&model.Room{Name: "Forest", FileName: "forest.json"})
	store.CreateRoom(&model.Room{Name: "Cave", FileName: "cave.json"})

	cfg := config.DefaultServer()
	cfg.MapsDir = dir
	cfg.TickRate = 5
	cfg.SyncIntervalTicks = 1
	cfg.SendQueueSize = 1024

	w, err := NewWorld(context.Background(), cfg, store, testKeys(t), discardLogger())
	require.NoError(t, err)

	return &fixture{t: t, w: w, store: store}
}

// newClient registers an offline connection with the world.
func (f *fixture) newClient() *Conn {
	f.nextID++
	c := newConn(f.nextID, nil, nil, f.w.cfg.SendQueueSize, discardLogger())
	f.w.conns[c.id] = c
	return c
}

// drain returns and clears the connection's outbound queue.
func drain(c *Conn) []packet.Message {
	out := c.outbound
	c.outbound = nil
	return out
}

// kindsOf projects messages to their kinds for order assertions.
func kindsOf(msgs []packet.Message) []packet.Kind {
	out := make([]packet.Kind, len(msgs))
	for i, m := range msgs {
		out[i] = m.Kind()
	}
	return out
}

// firstOfKind returns the first message of the given kind, or nil.
func firstOfKind(msgs []packet.Message, k packet.Kind) packet.Message {
	for _, m := range msgs {
		if m.Kind() == k {
			return m
		}
	}
	return nil
}

// instanceModels collects the Instance dicts pushed in msgs.
func instanceModels(msgs []packet.Message) []map[string]any {
	var out []map[string]any
	for _, m := range msgs {
		if sm, ok := m.(packet.ServerModel); ok && sm.TypeTag == "Instance" {
			out = append(out, sm.Model)
		}
	}
	return out
}

// decodeSent drains the write-pump queue and decodes every frame, proving
// the outbound path round-trips through the real codec.
func decodeSent(t *testing.T, c *Conn) []packet.Message {
	t.Helper()
	var out []packet.Message
	for {
		select {
		case f := <-c.sendCh:
			m, err := packet.Decode(f.data)
			require.NoError(t, err)
			out = append(out, m)
		default:
			return out
		}
	}
}

// login runs register+login for a fresh user and asserts the avatar is in
// play. Returns the connection with its outbound queue cleared.
func (f *fixture) login(username string) *Conn {
	f.t.Helper()

	c := f.newClient()
	f.w.dispatch(c, packet.Register{Username: username, Password: "pw"})
	msgs := drain(c)
	require.IsType(f.t, packet.Ok{}, msgs[len(msgs)-1], "register should end in Ok")

	f.w.dispatch(c, packet.Login{Username: username, Password: "pw"})
	require.Equal(f.t, StatePlay, c.state, "login should reach play state")
	drain(c)
	return c
}

// reach moves the avatar instance to (y, x) directly and refreshes views.
func (f *fixture) reach(c *Conn, y, x int) {
	c.instance.Y, c.instance.X = y, x
	f.w.recomputeRoom(c.instance.RoomID)
	drain(c)
}

// seedFloorItem places an item instance in the world.
func (f *fixture) seedFloorItem(typename model.Typename, name string, maxStack, amount int64, roomID int64, y, x int, respawn int64) *model.Instance {
	f.t.Helper()
	ctx := context.Background()

	entity := &model.Entity{Typename: typename, Name: name}
	require.NoError(f.t, f.store.CreateEntity(ctx, entity))
	f.store.CreateItem(&model.Item{Entity: entity, MaxStackAmt: maxStack})

	inst := &model.Instance{Entity: entity, RoomID: roomID, Y: y, X: x, Amount: amount, RespawnTime: respawn}
	require.NoError(f.t, f.store.CreateInstance(ctx, inst))
	f.w.live[roomID][inst.ID] = inst
	return inst
}

// seedNode places a resource node with a single-line drop table.
func (f *fixture) seedNode(typename model.Typename, name string, roomID int64, y, x int, respawn int64, dropTableID int64, drop *model.Item) *model.Instance {
	f.t.Helper()
	ctx := context.Background()

	entity := &model.Entity{Typename: typename, Name: name}
	require.NoError(f.t, f.store.CreateEntity(ctx, entity))
	f.store.CreateNode(&model.ResourceNode{EntityID: entity.ID, DropTableID: dropTableID})
	if drop != nil {
		f.store.CreateDropTableItem(&model.DropTableItem{
			DropTableID: dropTableID, Item: drop, Chance: 1, MinAmt: 1, MaxAmt: 3,
		})
	}

	inst := &model.Instance{Entity: entity, RoomID: roomID, Y: y, X: x, Amount: 1, RespawnTime: respawn}
	require.NoError(f.t, f.store.CreateInstance(ctx, inst))
	f.w.live[roomID][inst.ID] = inst
	return inst
}

// seedItemDef registers an item definition with no world placement.
func (f *fixture) seedItemDef(typename model.Typename, name string, maxStack int64) *model.Item {
	f.t.Helper()
	entity := &model.Entity{Typename: typename, Name: name}
	require.NoError(f.t, f.store.CreateEntity(context.Background(), entity))
	item := &model.Item{Entity: entity, MaxStackAmt: maxStack}
	f.store.CreateItem(item)
	return item
}
