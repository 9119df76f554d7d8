package usecase

import "time"

type Clock interface {
	Now() time.Time
}

// UTCで返す
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
