package gameserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonvale/mud/internal/packet"
)

func TestTickProcessesMailboxAndFlushes(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	c := f.login("ada")
	drain(c)

	c.Deliver(packet.MoveRight{})
	f.w.Tick()

	assert.Equal(t, 1, c.instance.X)

	sent := decodeSent(t, c)
	models := instanceModels(sent)
	require.NotEmpty(t, models, "self-sync should push the avatar's instance")
	self := models[len(models)-1]
	assert.EqualValues(t, 1, self["x"])
	assert.Empty(t, c.outbound, "flush must empty the outbound queue")
}

func TestMailboxKeepsOnlyNewestMessage(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	c := f.login("ada")
	drain(c)

	// the client floods two moves between ticks: only the newest survives
	c.Deliver(packet.MoveRight{})
	c.Deliver(packet.MoveDown{})
	f.w.Tick()

	assert.Equal(t, 1, c.instance.Y)
	assert.Equal(t, 0, c.instance.X)

	// nothing left for the next tick
	f.w.Tick()
	assert.Equal(t, 1, c.instance.Y)
	assert.Equal(t, 0, c.instance.X)
}

func TestGoneConnectionIsDroppedLikeLogout(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ada := f.login("ada")
	bob := f.login("bob")
	drain(ada)
	drain(bob)

	instanceID := ada.instance.ID
	roomID := ada.instance.RoomID

	ada.gone.Store(true)
	f.w.Tick()

	assert.NotContains(t, f.w.conns, ada.id)
	assert.Empty(t, f.w.online)

	// the avatar persists in the world, peers heard goodbye
	_, present := f.w.live[roomID][instanceID]
	assert.True(t, present)
	bobMsgs := decodeSent(t, bob)
	assert.Equal(t, packet.Goodbye{InstanceID: instanceID}, firstOfKind(bobMsgs, packet.KindGoodbye))
}

func TestJoinAdmitsAtTickBoundary(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	c := newConn(99, nil, nil, 16, discardLogger())
	f.w.Join(c)
	assert.NotContains(t, f.w.conns, int64(99))

	f.w.drainJoins()
	assert.Contains(t, f.w.conns, int64(99))
}

func TestCycleWeatherBroadcasts(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	ada := f.login("ada")
	drain(ada)
	before := f.w.Weather()

	f.w.cycleWeather()

	after := f.w.Weather()
	assert.NotEqual(t, before, after)
	assert.Contains(t, weatherStates, after)

	msgs := drain(ada)
	require.Len(t, msgs, 1)
	assert.Equal(t, packet.WeatherChange{State: after}, msgs[0])
}

func TestSelfSyncSubCadence(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.w.cfg.SyncIntervalTicks = 3
	c := f.login("ada")
	drain(c)

	f.w.Tick() // 1
	f.w.Tick() // 2
	assert.Empty(t, instanceModels(decodeSent(t, c)))

	f.w.Tick() // 3: sync tick
	models := instanceModels(decodeSent(t, c))
	require.Len(t, models, 1)
	assert.EqualValues(t, c.instance.ID, models[0]["id"])
}
