package world

// Cue names a feedback sound. The engine only picks cues; playing them is
// the host's problem.
type Cue string

const (
	CueOpen    Cue = "open"
	CueSelect  Cue = "select"
	CueConfirm Cue = "confirm"
	CueDenied  Cue = "denied"
)

// SoundPlayer dispatches a feedback cue to a player.
type SoundPlayer interface {
	Play(p PlayerID, cue Cue)
}

// BrowseOption is one entry of the browse screen. Name is the canonical
// catalog key and is embedded in the rendered option so a click reports it
// back verbatim; the engine never re-derives identity from the icon.
type BrowseOption struct {
	Name    string
	Icon    string
	Slot    int
	Enabled bool
}

// MenuRenderer draws the browse and confirmation screens. Implementations
// are expected to be dumb: they render what they are given and report
// clicks by option name.
type MenuRenderer interface {
	RenderBrowse(p PlayerID, options []BrowseOption)
	RenderConfirm(p PlayerID, option BrowseOption)
	CloseMenu(p PlayerID)
}

// Notifier sends a templated message to a player. Template resolution and
// placeholder substitution happen host-side.
type Notifier interface {
	Send(p PlayerID, template string, vars map[string]string)
}

// CommandActor says who a follow-up command runs as.
type CommandActor int

const (
	ActorConsole CommandActor = iota
	ActorPlayer
)

// CommandDispatcher executes a follow-up action string on behalf of an
// actor.
type CommandDispatcher interface {
	Dispatch(actor CommandActor, p PlayerID, command string)
}
