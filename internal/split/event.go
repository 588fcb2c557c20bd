package split

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// Event is a log-style message emitted while a run progresses.
type Event struct {
	Message string
	Level   ProgressLevel
}

// ProgressFunc is called once per track, after the track was exported or
// failed. current is 1-based.
type ProgressFunc func(current, total int, title string)
