package world

import (
	"sync"

	"github.com/google/uuid"
)

// Test doubles for the host boundary. They double as the in-process host
// used by cmd/server until a real adapter is wired in.

// FakeItem is a controllable dropped-item handle.
type FakeItem struct {
	ObjID ObjectID
	Pos   Position
	Dead  bool
}

func (i *FakeItem) ID() ObjectID       { return i.ObjID }
func (i *FakeItem) Valid() bool        { return !i.Dead }
func (i *FakeItem) Position() Position { return i.Pos }

// FakeWorld is an in-memory Locator with per-region load state.
type FakeWorld struct {
	mu       sync.Mutex
	items    map[ObjectID]*FakeItem
	unloaded map[string]bool
}

func NewFakeWorld() *FakeWorld {
	return &FakeWorld{
		items:    map[ObjectID]*FakeItem{},
		unloaded: map[string]bool{},
	}
}

// Drop places an item into the world and returns its handle. An empty id
// gets a generated one.
func (w *FakeWorld) Drop(id ObjectID, pos Position) *FakeItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	if id == "" {
		id = ObjectID(uuid.NewString())
	}
	it := &FakeItem{ObjID: id, Pos: pos}
	w.items[id] = it
	return it
}

// Remove deletes the item outright, simulating pickup or destruction the
// engine was not told about.
func (w *FakeWorld) Remove(id ObjectID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.items, id)
}

// SetRegionLoaded toggles a region's availability.
func (w *FakeWorld) SetRegionLoaded(region string, loaded bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if loaded {
		delete(w.unloaded, region)
	} else {
		w.unloaded[region] = true
	}
}

func (w *FakeWorld) Locate(id ObjectID) (Item, LocateStatus) {
	w.mu.Lock()
	defer w.mu.Unlock()
	it, ok := w.items[id]
	if !ok {
		return nil, LocateGone
	}
	if w.unloaded[it.Pos.Region] {
		return nil, LocateRegionUnloaded
	}
	return it, LocateFound
}

// FakeOverlay records the label text it was last given.
type FakeOverlay struct {
	HandleID  string
	Text      string
	Pos       Position
	Destroyed bool
}

func (o *FakeOverlay) SetText(text string) { o.Text = text }
func (o *FakeOverlay) Move(pos Position)   { o.Pos = pos }
func (o *FakeOverlay) Destroy()            { o.Destroyed = true }

// FakeOverlayFactory creates FakeOverlays and keeps every one it made.
type FakeOverlayFactory struct {
	mu      sync.Mutex
	Created []*FakeOverlay
	Fail    bool
	FailErr error
	// Visibility is the per-player overlay preference lookup, consulted
	// when deciding which players are shown overlay labels. Nil shows
	// them to everyone.
	Visibility func(p PlayerID) bool
}

func NewFakeOverlayFactory() *FakeOverlayFactory { return &FakeOverlayFactory{} }

func (f *FakeOverlayFactory) Create(pos Position, text string) (Overlay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail {
		return nil, f.FailErr
	}
	o := &FakeOverlay{HandleID: uuid.NewString(), Text: text, Pos: pos}
	f.Created = append(f.Created, o)
	return o, nil
}

// Sees reports whether p is shown overlay labels by this host.
func (f *FakeOverlayFactory) Sees(p PlayerID) bool {
	f.mu.Lock()
	vis := f.Visibility
	f.mu.Unlock()
	return vis == nil || vis(p)
}

// Live counts overlays not yet destroyed.
func (f *FakeOverlayFactory) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, o := range f.Created {
		if !o.Destroyed {
			n++
		}
	}
	return n
}

// FakePerms grants the nodes listed per player; a player mapped to nil with
// AllowAll grants everything.
type FakePerms struct {
	AllowAll bool
	Nodes    map[PlayerID]map[string]bool
}

func NewFakePerms() *FakePerms {
	return &FakePerms{Nodes: map[PlayerID]map[string]bool{}}
}

func (f *FakePerms) Grant(p PlayerID, node string) {
	if f.Nodes[p] == nil {
		f.Nodes[p] = map[string]bool{}
	}
	f.Nodes[p][node] = true
}

func (f *FakePerms) Has(p PlayerID, node string) bool {
	if f.AllowAll || node == "" {
		return true
	}
	return f.Nodes[p][node]
}

// RenderedMenu is one recorded render call.
type RenderedMenu struct {
	Player  PlayerID
	Kind    string // "browse" or "confirm"
	Options []BrowseOption
}

// FakeMenu records renders; clicks are simulated by the test calling the
// engine directly with the option name.
type FakeMenu struct {
	mu      sync.Mutex
	Renders []RenderedMenu
	Closed  []PlayerID
}

func NewFakeMenu() *FakeMenu { return &FakeMenu{} }

func (m *FakeMenu) RenderBrowse(p PlayerID, options []BrowseOption) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Renders = append(m.Renders, RenderedMenu{Player: p, Kind: "browse", Options: options})
}

func (m *FakeMenu) RenderConfirm(p PlayerID, option BrowseOption) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Renders = append(m.Renders, RenderedMenu{Player: p, Kind: "confirm", Options: []BrowseOption{option}})
}

func (m *FakeMenu) CloseMenu(p PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = append(m.Closed, p)
}

// Last returns the most recent render, or nil.
func (m *FakeMenu) Last() *RenderedMenu {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Renders) == 0 {
		return nil
	}
	r := m.Renders[len(m.Renders)-1]
	return &r
}

// SentMessage is one recorded notification.
type SentMessage struct {
	Player   PlayerID
	Template string
	Vars     map[string]string
}

type FakeNotifier struct {
	mu   sync.Mutex
	Sent []SentMessage
}

func NewFakeNotifier() *FakeNotifier { return &FakeNotifier{} }

func (n *FakeNotifier) Send(p PlayerID, template string, vars map[string]string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, SentMessage{Player: p, Template: template, Vars: vars})
}

type PlayedCue struct {
	Player PlayerID
	Cue    Cue
}

type FakeSounds struct {
	mu     sync.Mutex
	Played []PlayedCue
}

func NewFakeSounds() *FakeSounds { return &FakeSounds{} }

func (s *FakeSounds) Play(p PlayerID, cue Cue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Played = append(s.Played, PlayedCue{Player: p, Cue: cue})
}

type DispatchedCommand struct {
	Actor   CommandActor
	Player  PlayerID
	Command string
}

type FakeDispatcher struct {
	mu       sync.Mutex
	Commands []DispatchedCommand
}

func NewFakeDispatcher() *FakeDispatcher { return &FakeDispatcher{} }

func (d *FakeDispatcher) Dispatch(actor CommandActor, p PlayerID, command string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Commands = append(d.Commands, DispatchedCommand{Actor: actor, Player: p, Command: command})
}

// FakeRoster is a static online-player list.
type FakeRoster struct {
	mu      sync.Mutex
	players map[PlayerID]bool
}

func NewFakeRoster() *FakeRoster { return &FakeRoster{players: map[PlayerID]bool{}} }

func (r *FakeRoster) Join(p PlayerID)  { r.mu.Lock(); r.players[p] = true; r.mu.Unlock() }
func (r *FakeRoster) Leave(p PlayerID) { r.mu.Lock(); delete(r.players, p); r.mu.Unlock() }

func (r *FakeRoster) Online() []PlayerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PlayerID, 0, len(r.players))
	for p := range r.players {
		out = append(out, p)
	}
	return out
}

// FakePlaytime serves scripted elapsed-play-time values.
type FakePlaytime struct {
	mu      sync.Mutex
	Seconds map[PlayerID]int64
}

func NewFakePlaytime() *FakePlaytime { return &FakePlaytime{Seconds: map[PlayerID]int64{}} }

func (f *FakePlaytime) Set(p PlayerID, seconds int64) {
	f.mu.Lock()
	f.Seconds[p] = seconds
	f.mu.Unlock()
}

func (f *FakePlaytime) Elapsed(p PlayerID) (int64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.Seconds[p]
	return s, ok
}
