// Package world defines the boundary between the difficulty engine and the
// host game server. The engine owns none of these objects; it only holds
// handles handed to it by the host and must tolerate any of them vanishing
// between calls.
package world

// PlayerID identifies a player across sessions.
type PlayerID string

// ObjectID is the stable handle for a transient world object (a dropped
// item). The host guarantees uniqueness while the object exists; identity
// reuse after destruction is allowed.
type ObjectID string

// Position is a point in the host world, region-qualified so overlay
// placement survives region reloads.
type Position struct {
	Region string  `json:"region"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
}

// LocateStatus reports the outcome of resolving a tracked identity against
// live world state.
type LocateStatus int

const (
	// LocateFound means the object resolved to a live handle.
	LocateFound LocateStatus = iota
	// LocateGone means the object no longer exists anywhere the host can
	// see: picked up, burned, expired naturally. This is the expected
	// cleanup signal, not an error.
	LocateGone
	// LocateRegionUnloaded means the object's containing region is not
	// currently active. The caller must not conclude the object is gone.
	LocateRegionUnloaded
)

// Item is a live handle to a dropped item. Valid reports whether the handle
// still refers to a usable object; a handle can turn invalid between Locate
// and use.
type Item interface {
	ID() ObjectID
	Valid() bool
	Position() Position
}

// Locator resolves tracked identities against currently loaded regions.
// The reference implementation is a linear scan over loaded regions; hosts
// with a direct identity index may substitute it without changing this
// contract.
type Locator interface {
	Locate(id ObjectID) (Item, LocateStatus)
}

// Overlay is a floating non-interactive label attached to a world position.
type Overlay interface {
	SetText(text string)
	Move(pos Position)
	Destroy()
}

// OverlayFactory creates overlays. Creation can fail if the position's
// region unloads mid-call.
type OverlayFactory interface {
	Create(pos Position, text string) (Overlay, error)
}

// PermissionChecker answers permission-node checks for a player.
type PermissionChecker interface {
	Has(p PlayerID, node string) bool
}

// Roster lists players currently connected to the host.
type Roster interface {
	Online() []PlayerID
}

// Playtime reports a player's elapsed session play time, the clock the
// grace window is measured against.
type Playtime interface {
	Elapsed(p PlayerID) (seconds int64, ok bool)
}
