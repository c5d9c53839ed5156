package notification

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

type Notifier interface {
	Notify(message string, v ...any) error
}

func New(enable bool) Notifier {
	if enable {
		return BeepDecorator{Title: "clipwatch"}
	}
	return NullNotifier{}
}

type BeepDecorator struct {
	Title string
}

func (b BeepDecorator) Notify(message string, v ...any) error {
	return beeep.Notify(b.Title, fmt.Sprintf(message, v...), "")
}

type NullNotifier struct{}

func (n NullNotifier) Notify(string, ...any) error { return nil }
