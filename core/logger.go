package core

// Logger is any service that can report app events.
// args may carry errors, extra data (map[string]interface{}) and the request User.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
