package notify

import "github.com/rs/zerolog"

// Notifier is an optional host capability for surfacing a short title/body
// pair to a person. Hosts without a notification surface pass nil; Send
// degrades to a no-op so construction never depends on the capability.
type Notifier interface {
	Notify(title, body string)
}

// Send notifies through n when present.
func Send(n Notifier, title, body string) {
	if n != nil {
		n.Notify(title, body)
	}
}

// LogNotifier is the default Notifier: it writes notices to the log.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: logger.With().Str("component", "notify").Logger()}
}

func (n *LogNotifier) Notify(title, body string) {
	n.log.Warn().Str("title", title).Msg(body)
}
