package services

import (
	"time"

	"github.com/vncsmyrnk/classpoll/internal/core/ports"
)

type systemClock struct{}

func NewSystemClock() ports.Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) ports.Timer {
	return time.AfterFunc(d, f)
}
