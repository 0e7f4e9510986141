package signals

import (
	"os"
	"os/signal"
)

type Notifier interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

// OSNotifier delivers real process signals through os/signal.
type OSNotifier struct{}

func NewOSNotifier() Notifier {
	return OSNotifier{}
}

func (OSNotifier) Notify(c chan<- os.Signal, sig ...os.Signal) {
	if len(sig) == 0 {
		// os/signal treats an empty set as "every signal"
		return
	}
	signal.Notify(c, sig...)
}

func (OSNotifier) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}
