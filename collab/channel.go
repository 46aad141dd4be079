package collab

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/pixelsheets/gridsync/grid"
	"github.com/pixelsheets/gridsync/internal/refname"
	"github.com/pixelsheets/gridsync/store"
)

// Config identifies the room and the local user and bounds the channel's
// queues.
type Config struct {
	SpreadsheetID int
	SheetID       int
	User          User

	// CursorDebounce coalesces cursor broadcasts; only the last position
	// within the window is sent.
	CursorDebounce time.Duration
	// ReplayLimit caps cell updates buffered while disconnected. On
	// overflow the oldest buffered update is dropped with a warning.
	ReplayLimit int
	// ActivityLimit caps the in-memory activity feed.
	ActivityLimit int
}

func DefaultConfig() Config {
	return Config{
		CursorDebounce: 100 * time.Millisecond,
		ReplayLimit:    256,
		ActivityLimit:  100,
	}
}

// Opt configures a Channel beyond its Config.
type Opt func(*Channel)

func WithLogger(logger *zap.Logger) Opt {
	return func(c *Channel) { c.logger = logger }
}

func WithClock(clock clockwork.Clock) Opt {
	return func(c *Channel) { c.clock = clock }
}

// WithStore persists every committed local edit asynchronously. A failed
// write is reported through the notice callback and never rolled back.
func WithStore(s store.Store) Opt {
	return func(c *Channel) { c.store = s }
}

// WithOnState observes connection state changes.
func WithOnState(fn func(ConnState)) Opt {
	return func(c *Channel) { c.onState = fn }
}

// WithOnNotice receives transient user-facing messages, e.g. a cell that
// could not be saved.
func WithOnNotice(fn func(string)) Opt {
	return func(c *Channel) { c.onNotice = fn }
}

// WithOnRefresh fires after any change a host would want to redraw for:
// an applied remote edit, a presence update or a state change.
func WithOnRefresh(fn func()) Opt {
	return func(c *Channel) { c.onRefresh = fn }
}

// Channel keeps one grid in sync with a sheet room. Local edits flow in via
// PushUpdate and CursorMoved; remote events are applied onto the grid and
// the presence map by the channel's event loop. Callbacks fire from that
// loop.
type Channel struct {
	cfg    Config
	grid   *grid.Grid
	tr     Transport
	store  store.Store
	logger *zap.Logger
	clock  clockwork.Clock

	onState   func(ConnState)
	onNotice  func(string)
	onRefresh func()

	cells       chan CellUpdate
	cursorTimer clockwork.Timer

	mu            sync.Mutex
	state         ConnState
	presence      map[int]Collaborator
	replay        []CellUpdate
	activity      []Activity
	lastRow       int
	lastCol       int
	lastEditing   bool
	pendingCursor bool

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	persistWG sync.WaitGroup
}

// New builds a channel for one sheet room. The grid receives applied remote
// updates; tr carries the wire frames.
func New(cfg Config, g *grid.Grid, tr Transport, opts ...Opt) *Channel {
	if cfg.CursorDebounce <= 0 {
		cfg.CursorDebounce = 100 * time.Millisecond
	}
	if cfg.ReplayLimit <= 0 {
		cfg.ReplayLimit = 256
	}
	if cfg.ActivityLimit <= 0 {
		cfg.ActivityLimit = 100
	}

	c := &Channel{
		cfg:       cfg,
		grid:      g,
		tr:        tr,
		logger:    zap.NewNop(),
		clock:     clockwork.NewRealClock(),
		onState:   func(ConnState) {},
		onNotice:  func(string) {},
		onRefresh: func() {},
		cells:     make(chan CellUpdate, 64),
		state:     StateConnecting,
		presence:  make(map[int]Collaborator),
		lastRow:   1,
		lastCol:   1,
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cursorTimer = c.clock.NewTimer(time.Hour)
	c.cursorTimer.Stop()
	return c
}

// Start connects the transport and launches the event loop.
func (c *Channel) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)
	if err := c.tr.Connect(c.ctx); err != nil {
		c.cancel()
		return fmt.Errorf("connecting transport: %w", err)
	}
	c.wg.Add(1)
	go c.run(c.ctx)
	return nil
}

// Reconnect dials the transport again after a drop. When to call it is the
// host's policy; the channel only buffers edits in the meantime.
func (c *Channel) Reconnect(ctx context.Context) error {
	return c.tr.Connect(ctx)
}

// Close announces departure, stops the event loop, closes the transport and
// waits for outstanding persistence writes.
func (c *Channel) Close() error {
	c.mu.Lock()
	connected := c.state == StateConnected
	c.mu.Unlock()
	if connected {
		c.send(&CollaboratorLeave{Type: TypeCollaboratorLeave, UserID: c.cfg.User.ID})
	}
	if c.cancel != nil {
		c.cancel()
	}
	err := c.tr.Close()
	c.wg.Wait()
	c.persistWG.Wait()
	return err
}

func (c *Channel) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Collaborators returns a snapshot of remote peers sorted by user id.
func (c *Channel) Collaborators() []Collaborator {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Collaborator, 0, len(c.presence))
	for _, col := range c.presence {
		out = append(out, col)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// Activities returns the recent edit feed, newest first.
func (c *Channel) Activities() []Activity {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Activity, len(c.activity))
	for i, a := range c.activity {
		out[len(out)-1-i] = a
	}
	return out
}

// PushUpdate hands one committed local edit to the channel. Connected, it
// is broadcast immediately; disconnected, it is buffered for replay. Either
// way it is persisted when a store is configured.
func (c *Channel) PushUpdate(u grid.Update) {
	cu := CellUpdate{
		Row:             u.Row,
		Column:          u.Column,
		Value:           u.Value,
		UserID:          c.cfg.User.ID,
		TimestampMillis: u.Timestamp,
	}
	select {
	case c.cells <- cu:
	default:
		c.logger.Warn("local edit queue full, dropping broadcast",
			zap.Int("row", u.Row), zap.Int("column", u.Column))
	}
}

// CursorMoved records the local cursor. Emission is debounced; only the
// freshest position is ever sent, and none while disconnected.
func (c *Channel) CursorMoved(row, col int, editing bool) {
	c.mu.Lock()
	c.lastRow, c.lastCol, c.lastEditing = row, col, editing
	c.pendingCursor = true
	c.cursorTimer.Reset(c.cfg.CursorDebounce)
	c.mu.Unlock()
}

func (c *Channel) run(ctx context.Context) {
	defer c.wg.Done()
	events := c.tr.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Data != nil {
				c.handleMessage(ev.Data)
			} else {
				c.handleState(ev.State)
			}
		case cu := <-c.cells:
			c.handleLocalCell(cu)
		case <-c.cursorTimer.Chan():
			c.flushCursor()
		}
	}
}

func (c *Channel) handleState(st ConnState) {
	c.mu.Lock()
	prev := c.state
	if st == prev {
		c.mu.Unlock()
		return
	}
	c.state = st
	var toReplay []CellUpdate
	if st == StateConnected {
		toReplay = c.replay
		c.replay = nil
	}
	c.mu.Unlock()

	c.logger.Info("connection state changed",
		zap.String("from", string(prev)), zap.String("to", string(st)))
	c.onState(st)

	if st == StateConnected {
		c.send(&JoinRoom{
			Type:          TypeJoinRoom,
			SpreadsheetID: c.cfg.SpreadsheetID,
			SheetID:       c.cfg.SheetID,
		})
		c.send(&CollaboratorJoin{Type: TypeCollaboratorJoin, User: c.cfg.User})
		c.sendCursorNow()
		for _, cu := range toReplay {
			c.sendCell(cu)
		}
		if len(toReplay) > 0 {
			c.logger.Info("replayed buffered edits", zap.Int("count", len(toReplay)))
		}
	}
	c.onRefresh()
}

func (c *Channel) handleMessage(data []byte) {
	msg, err := Decode(data)
	if err != nil {
		c.logger.Debug("dropping undecodable frame", zap.Error(err))
		return
	}
	switch m := msg.(type) {
	case *CollaboratorJoin:
		c.applyJoin(m)
	case *CollaboratorLeave:
		c.applyLeave(m)
	case *CursorMove:
		c.applyCursor(m)
	case *CellUpdate:
		c.applyCell(m)
	case *ConnectionStatus:
		st := ConnState(m.Status)
		if !validState(st) {
			c.logger.Debug("ignoring unknown connection status", zap.String("status", m.Status))
			return
		}
		c.handleState(st)
	case *JoinRoom:
		// Room bookkeeping, nothing for a client to do.
	}
}

func (c *Channel) applyJoin(m *CollaboratorJoin) {
	if m.User.ID == c.cfg.User.ID {
		return
	}
	c.mu.Lock()
	col, known := c.presence[m.User.ID]
	if !known {
		col = Collaborator{
			UserID: m.User.ID,
			Row:    1,
			Column: 1,
			Color:  colorFor(m.User.ID),
		}
	}
	col.Username = m.User.Username
	col.Email = m.User.Email
	col.Avatar = m.User.Avatar
	c.presence[m.User.ID] = col
	connected := c.state == StateConnected
	c.mu.Unlock()

	c.logger.Info("collaborator joined",
		zap.Int("user", m.User.ID), zap.String("username", m.User.Username))
	if !known && connected {
		// Introduce ourselves so the newcomer learns who is already
		// here; they already know us next time, which stops the loop.
		c.send(&CollaboratorJoin{Type: TypeCollaboratorJoin, User: c.cfg.User})
		c.sendCursorNow()
	}
	c.onRefresh()
}

func (c *Channel) applyLeave(m *CollaboratorLeave) {
	if m.UserID == c.cfg.User.ID {
		return
	}
	c.mu.Lock()
	_, known := c.presence[m.UserID]
	delete(c.presence, m.UserID)
	c.mu.Unlock()

	// Leaves for unknown users are a no-op.
	if known {
		c.logger.Info("collaborator left", zap.Int("user", m.UserID))
		c.onRefresh()
	}
}

func (c *Channel) applyCursor(m *CursorMove) {
	if m.UserID == c.cfg.User.ID {
		return
	}
	if !c.inBounds(m.Row, m.Column) {
		c.logger.Debug("ignoring out-of-bounds cursor",
			zap.Int("row", m.Row), zap.Int("column", m.Column))
		return
	}
	c.mu.Lock()
	col, known := c.presence[m.UserID]
	if !known {
		// The join may have been lost; track the peer anyway.
		col = Collaborator{
			UserID:   m.UserID,
			Username: fmt.Sprintf("user %d", m.UserID),
			Color:    colorFor(m.UserID),
		}
	}
	col.Row = m.Row
	col.Column = m.Column
	col.IsEditing = m.IsEditing
	c.presence[m.UserID] = col
	c.mu.Unlock()
	c.onRefresh()
}

func (c *Channel) applyCell(m *CellUpdate) {
	if m.UserID == c.cfg.User.ID {
		// Our own write echoed back by the room; already applied.
		return
	}
	if !c.inBounds(m.Row, m.Column) {
		c.logger.Debug("ignoring out-of-bounds cell-update",
			zap.Int("row", m.Row), zap.Int("column", m.Column))
		return
	}
	// Delivery order is authoritative; the grid overwrites whatever it
	// holds and queues nothing back.
	c.grid.ApplyRemote(grid.Update{
		Row:       m.Row,
		Column:    m.Column,
		Value:     m.Value,
		Timestamp: m.TimestampMillis,
	})
	c.recordActivity(*m)
	c.onRefresh()
}

func (c *Channel) handleLocalCell(cu CellUpdate) {
	c.mu.Lock()
	connected := c.state == StateConnected
	if !connected {
		if len(c.replay) >= c.cfg.ReplayLimit {
			dropped := c.replay[0]
			c.replay = c.replay[1:]
			c.logger.Warn("replay buffer full, dropping oldest edit",
				zap.Int("row", dropped.Row), zap.Int("column", dropped.Column))
		}
		c.replay = append(c.replay, cu)
	}
	c.mu.Unlock()

	if connected {
		c.sendCell(cu)
	}
	c.recordActivity(cu)
	c.persist(cu)
}

func (c *Channel) flushCursor() {
	c.mu.Lock()
	if !c.pendingCursor {
		c.mu.Unlock()
		return
	}
	c.pendingCursor = false
	connected := c.state == StateConnected
	cm := c.cursorLocked()
	c.mu.Unlock()

	if connected {
		c.send(&cm)
	}
}

func (c *Channel) sendCursorNow() {
	c.mu.Lock()
	c.pendingCursor = false
	cm := c.cursorLocked()
	c.mu.Unlock()
	c.send(&cm)
}

func (c *Channel) cursorLocked() CursorMove {
	return CursorMove{
		Type:          TypeCursorMove,
		SpreadsheetID: c.cfg.SpreadsheetID,
		SheetID:       c.cfg.SheetID,
		Row:           c.lastRow,
		Column:        c.lastCol,
		IsEditing:     c.lastEditing,
		UserID:        c.cfg.User.ID,
	}
}

func (c *Channel) sendCell(cu CellUpdate) {
	cu.Type = TypeCellUpdate
	cu.SpreadsheetID = c.cfg.SpreadsheetID
	cu.SheetID = c.cfg.SheetID
	c.send(&cu)
}

func (c *Channel) send(msg any) {
	data, err := Encode(msg)
	if err != nil {
		c.logger.Error("encoding frame", zap.Error(err))
		return
	}
	if err := c.tr.Send(data); err != nil {
		c.logger.Warn("send failed", zap.Error(err))
	}
}

func (c *Channel) recordActivity(cu CellUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	username := fmt.Sprintf("user %d", cu.UserID)
	if cu.UserID == c.cfg.User.ID {
		username = c.cfg.User.Username
	} else if col, ok := c.presence[cu.UserID]; ok {
		username = col.Username
	}
	c.activity = append(c.activity, Activity{
		UserID:          cu.UserID,
		Username:        username,
		Row:             cu.Row,
		Column:          cu.Column,
		Value:           cu.Value,
		TimestampMillis: cu.TimestampMillis,
	})
	if len(c.activity) > c.cfg.ActivityLimit {
		c.activity = c.activity[len(c.activity)-c.cfg.ActivityLimit:]
	}
}

func (c *Channel) persist(cu CellUpdate) {
	if c.store == nil {
		return
	}
	// Writes are fire-and-forget: the grid keeps its optimistic state
	// whether or not the write lands. Close still waits for them.
	ctx := context.WithoutCancel(c.ctx)
	c.persistWG.Add(1)
	go func() {
		defer c.persistWG.Done()
		_, err := c.store.WriteCell(ctx, c.cfg.SheetID, cu.Row, cu.Column, store.DataForValue(cu.Value))
		if err != nil {
			c.logger.Warn("persisting cell failed",
				zap.Int("row", cu.Row), zap.Int("column", cu.Column), zap.Error(err))
			c.onNotice(fmt.Sprintf("cell %s not saved: %v", refname.Format(cu.Row, cu.Column), err))
		}
	}()
}

func (c *Channel) inBounds(row, col int) bool {
	return c.grid.Bounds().Contains(grid.Ref{Row: row, Col: col})
}
