package session

// GameEngine is the surface of the external game engine the challenge
// session drives. The real engine lives in the browser host; tests and
// tooling provide fakes.
type GameEngine interface {
	SetGameSpeed(speed float64)
	SetPaddleSize(size int)
	EnablePowerups(enabled bool)

	// On subscribes a handler to an engine event. Handlers run synchronously
	// on the engine's event loop.
	On(event string, handler func(payload map[string]any))

	Start()
	Pause()
	Reset()

	GetScore() int
	GetElapsedTime() float64 // seconds
	GetMissCount() int
	GetPowerupsUsed() int
}

// Engine events the session subscribes to.
const (
	EngineEventScoreUpdate      = "score:update"
	EngineEventPowerupCollected = "powerup:collected"
	EngineEventGamePause        = "game:pause"
)

// Events the session emits toward the UI.
const (
	EventChallengeStart     = "challenge:start"
	EventChallengeEnd       = "challenge:end"
	EventChallengeTimeout   = "challenge:timeout"
	EventChallengeViolation = "challenge:violation"
	EventProgressUpdate     = "progress:update"
	EventStateChange        = "state:change"
)
