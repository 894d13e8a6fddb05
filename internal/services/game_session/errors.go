package game_session

// GameSessionError is a custom error type for game session errors
type GameSessionError string

// Error implements the error interface
func (e GameSessionError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrSessionNotFound      GameSessionError = "game session not found"
	ErrInvalidJoinCode      GameSessionError = "invalid join code"
	ErrInvalidSettings      GameSessionError = "invalid game settings"
	ErrInvalidTransition    GameSessionError = "invalid game session transition"
	ErrInvalidInput         GameSessionError = "invalid input"
	ErrJoinCodeExhausted    GameSessionError = "could not allocate a unique join code"
	ErrNilConfig            GameSessionError = "config cannot be nil"
	ErrNilSessionRepo       GameSessionError = "session repository cannot be nil"
	ErrNilJoinCodeGenerator GameSessionError = "join code generator cannot be nil"
	ErrNilClock             GameSessionError = "clock cannot be nil"
)
