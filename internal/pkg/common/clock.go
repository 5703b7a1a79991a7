package common

import (
	"github.com/jonboulle/clockwork"
	"github.com/samber/do/v2"
)

func NewClock(_ do.Injector) (clockwork.Clock, error) {
	return clockwork.NewRealClock(), nil
}
