package server

// ReplayMode controls whether game recordings are captured.
type ReplayMode uint8

const (
	// ReplayOff disables recording entirely.
	ReplayOff ReplayMode = iota
	// ReplayOn records every tick the active behaviour marks as recordable.
	ReplayOn
	// ReplayStandby keeps recording infrastructure armed but captures nothing
	// until an admin switches it on.
	ReplayStandby
)

// Config carries the per-instance server options that do not belong to any
// particular game mode.
type Config struct {
	// Welcome lines are sent as server chat to every player right after they
	// join.
	Welcome []string
	// Password gates the /admin command. An empty password disables admin
	// login.
	Password string
	// PlayerMax caps the number of connected players. Values above the object
	// slot count are clamped by the caller.
	PlayerMax int
	// ReplaysEnabled selects the initial recording mode.
	ReplaysEnabled ReplayMode
	// ServerName is reported in info responses and used by replay savers.
	ServerName string
	// ServerService names the systemd unit restarted by /serverrestart. Empty
	// disables the command.
	ServerService string
	// Public is the master server announce URL. Empty keeps the server off the
	// public list.
	Public string
}
