package gameserver

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/moonvale/mud/internal/model"
	"github.com/moonvale/mud/internal/packet"
	"github.com/moonvale/mud/internal/protocol"
	"github.com/moonvale/mud/internal/roommap"
	"github.com/moonvale/mud/internal/scheduler"
)

// State is the connection's position in the session lifecycle.
type State int

const (
	// StateGetEntry: key exchange done or pending, not yet authenticated.
	StateGetEntry State = iota
	// StatePlay: bound to a player instance, gameplay dispatch active.
	StatePlay
)

// inbound wraps a decoded message so the mailbox can hold it atomically.
type inbound struct {
	msg packet.Message
}

// outFrame is one encoded message bound for the write pump. The ClientKey
// reply travels in cleartext; everything else is encrypted.
type outFrame struct {
	data  []byte
	plain bool
}

// Conn is one client connection. The reader goroutine fills the 1-slot
// mailbox; the write pump drains sendCh; everything else is owned by the
// world thread and must only be touched there.
type Conn struct {
	id  int64
	tr  *protocol.Transport
	rwc io.Closer
	log *slog.Logger

	mailbox atomic.Pointer[inbound]
	gone    atomic.Bool

	sendCh    chan outFrame
	closeCh   chan struct{}
	closeOnce sync.Once

	// world-thread session state
	state     State
	user      *model.User
	player    *model.Player
	instance  *model.Instance
	inventory *model.Inventory
	roomMap   *roommap.Map
	visible   map[int64]*model.Instance
	outbound  []packet.Message
	action    *scheduler.Task
}

func newConn(id int64, tr *protocol.Transport, rwc io.Closer, queueSize int, log *slog.Logger) *Conn {
	return &Conn{
		id:      id,
		tr:      tr,
		rwc:     rwc,
		log:     log.With("conn", id),
		sendCh:  make(chan outFrame, queueSize),
		closeCh: make(chan struct{}),
		visible: make(map[int64]*model.Instance),
	}
}

// Deliver places msg in the inbound mailbox, discarding any older message
// still waiting there. Called from the reader goroutine.
func (c *Conn) Deliver(msg packet.Message) {
	c.mailbox.Store(&inbound{msg: msg})
}

// takeInbound removes and returns the pending message, or nil.
func (c *Conn) takeInbound() packet.Message {
	in := c.mailbox.Swap(nil)
	if in == nil {
		return nil
	}
	return in.msg
}

// Queue appends msg to the outbound queue. World thread only.
func (c *Conn) Queue(msg packet.Message) {
	c.outbound = append(c.outbound, msg)
}

// Flush encodes the outbound queue in FIFO order and hands the frames to the
// write pump. A full send queue drops the frame rather than stall the world
// thread. World thread only.
func (c *Conn) Flush() {
	for _, msg := range c.outbound {
		data, err := packet.Encode(msg)
		if err != nil {
			c.log.Error("encoding outbound message", "kind", msg.Kind(), "error", err)
			continue
		}
		f := outFrame{data: data, plain: msg.Kind() == packet.KindClientKey}
		select {
		case c.sendCh <- f:
		default:
			c.log.Warn("send queue full, dropping frame", "kind", msg.Kind())
		}
	}
	c.outbound = c.outbound[:0]
}

// writePump sends frames until the connection closes. Runs on its own
// goroutine; the only writer of the transport.
func (c *Conn) writePump() {
	for {
		select {
		case f := <-c.sendCh:
			var err error
			if f.plain {
				err = c.tr.WritePlain(f.data)
			} else {
				err = c.tr.Write(f.data)
			}
			if err != nil {
				c.log.Debug("writing frame", "error", err)
				c.gone.Store(true)
				return
			}
		case <-c.closeCh:
			return
		}
	}
}

// Close tears down the socket and stops the write pump. Safe to call more
// than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.closeCh)
		if c.rwc != nil {
			c.rwc.Close()
		}
	})
}
