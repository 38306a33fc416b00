package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isogrid-server/internal/domain"
	"isogrid-server/pkg/api"
)

type recordingPublisher struct {
	mu   sync.Mutex
	subs map[domain.EntityID]bool
	sent map[domain.EntityID][]api.ServerResponse
}

func newRecordingPublisher(ids ...domain.EntityID) *recordingPublisher {
	p := &recordingPublisher{subs: map[domain.EntityID]bool{}, sent: map[domain.EntityID][]api.ServerResponse{}}
	for _, id := range ids {
		p.subs[id] = true
	}
	return p
}

func (p *recordingPublisher) HasSubscriber(id domain.EntityID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.subs[id]
}

func (p *recordingPublisher) SendTo(id domain.EntityID, msg api.ServerResponse) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent[id] = append(p.sent[id], msg)
}

func TestEventQueueDrainsPushesMadeDuringDrain(t *testing.T) {
	var q EventQueue
	q.Push(domain.SimEvent{Type: domain.EventArrived})

	var seen []domain.EventType
	q.Drain(func(ev domain.SimEvent) {
		seen = append(seen, ev.Type)
		if ev.Type == domain.EventArrived {
			q.Push(domain.SimEvent{Type: domain.EventWarpEntered})
		}
	})

	assert.Equal(t, []domain.EventType{domain.EventArrived, domain.EventWarpEntered}, seen)
	assert.Equal(t, 0, q.Len())
}

func TestNewInstanceSpawnsMobsInOrder(t *testing.T) {
	lvl := openLevel(t, 3, 8, domain.GridCell{X: 1, Y: 1},
		mob{cell: domain.GridCell{X: 5, Y: 5}},
		mob{cell: domain.GridCell{X: 6, Y: 2}, facing: domain.FacingNE},
	)
	inst := NewInstance(lvl, testSim(), testTickRate, 1)

	actors := inst.Actors()
	require.Len(t, actors, 2)
	assert.Equal(t, domain.PackEntityID(domain.ActorKindWolf, 3, 1), actors[0].ID)
	assert.Equal(t, domain.PackEntityID(domain.ActorKindWolf, 3, 2), actors[1].ID)
	assert.Equal(t, 0, actors[0].Order)
	assert.Equal(t, 1, actors[1].Order)
	assert.Equal(t, domain.FacingNE, actors[1].Facing)
	assert.Equal(t, inst.Grid.GridToWorld(domain.GridCell{X: 6, Y: 2}), actors[1].Position)

	snap := inst.Snapshot()
	assert.Equal(t, uint64(0), snap.Tick)
	assert.Len(t, snap.Actors, 2)
}

func TestJoinPicksNearestFreeCell(t *testing.T) {
	lvl := openLevel(t, 0, 8, domain.GridCell{X: 3, Y: 3})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)

	first := inst.ApplyJoin(JoinRequest{ID: playerID(1)})
	second := inst.ApplyJoin(JoinRequest{ID: playerID(2)})
	runTicks(inst, 1)
	third := inst.ApplyJoin(JoinRequest{ID: playerID(3)})
	runTicks(inst, 2)

	assert.Equal(t, domain.GridCell{X: 3, Y: 3}, first.Cell())
	assert.Equal(t, domain.GridCell{X: 3, Y: 2}, second.Cell(), "first free neighbour is north")
	assert.Equal(t, domain.GridCell{X: 4, Y: 3}, third.Cell(), "then east")

	for _, a := range []*Actor{first, second, third} {
		assert.Equal(t, []domain.GridCell{a.Cell()}, inst.Reservations.HeldBy(a.ID))
	}
}

func TestJoinTwiceIsIgnored(t *testing.T) {
	lvl := openLevel(t, 0, 8, domain.GridCell{X: 3, Y: 3})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)

	a := inst.ApplyJoin(JoinRequest{ID: playerID(1)})
	b := inst.ApplyJoin(JoinRequest{ID: playerID(1)})
	assert.Same(t, a, b)
	assert.Len(t, inst.Actors(), 1)
	assert.Len(t, inst.Journal.Actions, 1)
}

func TestLeaveReleasesReservations(t *testing.T) {
	lvl := openLevel(t, 0, 8, domain.GridCell{X: 3, Y: 3})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)
	p := inst.ApplyJoin(JoinRequest{ID: playerID(1), Facing: facingPtr(domain.FacingSE)})
	p.Input().Hold(domain.FacingSE)
	runTicks(inst, 2)
	require.Len(t, inst.Reservations.HeldBy(p.ID), 2, "origin and destination while moving")

	inst.LeaveChan <- p.ID
	runTicks(inst, 1)

	_, ok := inst.Actor(p.ID)
	assert.False(t, ok)
	assert.Empty(t, inst.Reservations.HeldBy(p.ID))
	assert.Equal(t, 0, inst.Reservations.Count())

	last := inst.Journal.Actions[len(inst.Journal.Actions)-1]
	assert.Equal(t, domain.ActionLeave, last.Action)
	assert.Equal(t, uint64(2), last.Tick)

	// Выход неизвестного игрока ничего не пишет.
	inst.ApplyLeave(p.ID)
	assert.Equal(t, last, inst.Journal.Actions[len(inst.Journal.Actions)-1])
}

func TestCommandsAreJournaledWithTick(t *testing.T) {
	lvl := openLevel(t, 0, 8, domain.GridCell{X: 3, Y: 3})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)
	id := playerID(1)

	inst.JoinChan <- JoinRequest{ID: id}
	inst.CommandChan <- InstanceCommand{Cmd: domain.InternalCommand{Action: domain.ActionMove, Actor: id, Payload: []byte(`{"facing":"ne"}`)}}
	runTicks(inst, 3)
	inst.CommandChan <- InstanceCommand{Cmd: domain.InternalCommand{Action: domain.ActionStop, Actor: id}}
	inst.CommandChan <- InstanceCommand{Cmd: domain.InternalCommand{Action: domain.ActionInit, Actor: id}}
	runTicks(inst, 1)

	var got []string
	var ticks []uint64
	for _, a := range inst.Journal.Actions {
		got = append(got, a.Action.String())
		ticks = append(ticks, a.Tick)
	}
	assert.Equal(t, []string{"JOIN", "MOVE", "STOP"}, got, "INIT does not change the simulation")
	assert.Equal(t, []uint64{0, 0, 3}, ticks)
}

func TestInvalidPayloadSendsError(t *testing.T) {
	lvl := openLevel(t, 0, 8, domain.GridCell{X: 3, Y: 3})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)
	id := playerID(1)
	pub := newRecordingPublisher(id)
	inst.Publisher = pub
	inst.ApplyJoin(JoinRequest{ID: id})

	inst.ApplyCommand(domain.InternalCommand{Action: domain.ActionMove, Actor: id, Payload: []byte(`{"facing":"north"}`)})

	require.Len(t, pub.sent[id], 1)
	assert.Equal(t, api.MsgTypeError, pub.sent[id][0].Type)
	assert.NotEmpty(t, pub.sent[id][0].Error)
	assert.Len(t, inst.Journal.Actions, 1, "only the join")
}

func TestPublishSendsFullSnapshotOnce(t *testing.T) {
	lvl := openLevel(t, 0, 6, domain.GridCell{X: 2, Y: 2})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)
	id := playerID(1)
	other := playerID(2)
	pub := newRecordingPublisher(id)
	inst.Publisher = pub

	inst.ApplyJoin(JoinRequest{ID: id})
	inst.ApplyJoin(JoinRequest{ID: other})
	inst.Tick(testDT)
	inst.Publish()
	inst.Tick(testDT)
	inst.Publish()

	sent := pub.sent[id]
	require.Len(t, sent, 2)
	assert.Empty(t, pub.sent[other], "no subscription, no snapshot")

	first := sent[0]
	assert.Equal(t, api.MsgTypeUpdate, first.Type)
	assert.Equal(t, id.Token(), first.MyEntityID)
	require.NotNil(t, first.Grid)
	assert.Equal(t, 6, first.Grid.Width)
	assert.Equal(t, uint64(1), first.Tick)
	require.Len(t, first.Actors, 2)
	assert.Equal(t, "PLAYER", first.Actors[0].Kind)
	assert.Equal(t, "sw_idle", first.Actors[0].Animation)

	assert.Nil(t, sent[1].Grid, "later snapshots carry actors only")
	assert.Equal(t, uint64(2), sent[1].Tick)
}

func TestWarpedJoinGetsWarpMessage(t *testing.T) {
	lvl := openLevel(t, 0, 6, domain.GridCell{X: 2, Y: 2})
	inst := NewInstance(lvl, testSim(), testTickRate, 1)
	id := playerID(1)
	pub := newRecordingPublisher(id)
	inst.Publisher = pub

	inst.ApplyJoin(JoinRequest{ID: id, Cell: cellPtr(4, 4), Warped: true})
	inst.Tick(testDT)
	inst.Publish()

	require.Len(t, pub.sent[id], 1)
	assert.Equal(t, api.MsgTypeWarp, pub.sent[id][0].Type)
	assert.Equal(t, api.CellView{X: 4, Y: 4}, pub.sent[id][0].Actors[0].Cell)
}

func TestEventLogKeepsMostRecent(t *testing.T) {
	l := NewEventLog()
	for k := 0; k < eventLogCapacity+10; k++ {
		l.add(api.LogEntry{Tick: uint64(k)})
	}
	recent := l.Recent()
	require.Len(t, recent, eventLogCapacity)
	assert.Equal(t, uint64(10), recent[0].Tick)
	assert.Equal(t, uint64(eventLogCapacity+9), recent[len(recent)-1].Tick)
}
