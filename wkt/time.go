package wkt

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/anirudhraja/pureproto/schema"
	"github.com/anirudhraja/pureproto/wire"
)

// Valid ranges: 0001-01-01T00:00:00Z to 9999-12-31T23:59:59.999999999Z for
// timestamps, about +-10000 years for durations.
const (
	minTimestampSeconds = -62135596800
	maxTimestampSeconds = 253402300799
	maxDurationSeconds  = 315576000000
)

// NewTimestamp returns a Timestamp message for t.
func NewTimestamp(t time.Time) *schema.Message {
	m := Timestamp.New()
	setSecondsNanos(m, t.Unix(), int32(t.Nanosecond()))
	return m
}

// TimestampTime converts a Timestamp message to a UTC time.Time.
func TimestampTime(m *schema.Message) (time.Time, error) {
	if err := checkType(m, Timestamp); err != nil {
		return time.Time{}, err
	}
	sec, ns := secondsNanos(m)
	if sec < minTimestampSeconds || sec > maxTimestampSeconds {
		return time.Time{}, fmt.Errorf("%w: timestamp seconds %d out of range", wire.ErrIncorrectValue, sec)
	}
	if ns < 0 || ns > 999999999 {
		return time.Time{}, fmt.Errorf("%w: timestamp nanos %d out of range", wire.ErrIncorrectValue, ns)
	}
	return time.Unix(sec, int64(ns)).UTC(), nil
}

// ParseTimestamp parses the RFC 3339 form used by the JSON mapping.
func ParseTimestamp(s string) (*schema.Message, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid timestamp: %v", wire.ErrIncorrectValue, err)
	}
	if sec := t.Unix(); sec < minTimestampSeconds || sec > maxTimestampSeconds {
		return nil, fmt.Errorf("%w: timestamp %s out of range", wire.ErrIncorrectValue, s)
	}
	return NewTimestamp(t), nil
}

// NewDuration returns a Duration message for d. Seconds and nanos carry the
// same sign.
func NewDuration(d time.Duration) *schema.Message {
	m := Duration.New()
	setSecondsNanos(m, int64(d/time.Second), int32(d%time.Second))
	return m
}

// DurationValue converts a Duration message to a time.Duration. Durations
// beyond the time.Duration range (about 292 years) fail.
func DurationValue(m *schema.Message) (time.Duration, error) {
	if err := checkType(m, Duration); err != nil {
		return 0, err
	}
	sec, ns := secondsNanos(m)
	if sec < -maxDurationSeconds || sec > maxDurationSeconds {
		return 0, fmt.Errorf("%w: duration seconds %d out of range", wire.ErrIncorrectValue, sec)
	}
	if ns <= -1e9 || ns >= 1e9 || sec > 0 && ns < 0 || sec < 0 && ns > 0 {
		return 0, fmt.Errorf("%w: duration nanos %d invalid for seconds %d", wire.ErrIncorrectValue, ns, sec)
	}
	d := time.Duration(sec) * time.Second
	if d/time.Second != time.Duration(sec) {
		return 0, fmt.Errorf("%w: duration of %ds overflows time.Duration", wire.ErrIncorrectValue, sec)
	}
	return d + time.Duration(ns), nil
}

// ParseDuration parses the JSON form of a duration, such as "1.5s" or "-0.000000001s".
func ParseDuration(ds string) (*schema.Message, error) {
	core, ok := strings.CutSuffix(ds, "s")
	if !ok {
		return nil, fmt.Errorf("%w: invalid duration %q: missing 's' suffix", wire.ErrIncorrectValue, ds)
	}
	neg := false
	if rest, ok := strings.CutPrefix(core, "-"); ok {
		neg, core = true, rest
	} else {
		core = strings.TrimPrefix(core, "+")
	}

	secPart, fracPart, _ := strings.Cut(core, ".")
	if secPart == "" {
		secPart = "0"
	}
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid duration seconds: %v", wire.ErrIncorrectValue, err)
	}
	if len(fracPart) > 9 {
		return nil, fmt.Errorf("%w: duration %q has more than nanosecond precision", wire.ErrIncorrectValue, ds)
	}
	var ns int64
	if fracPart != "" {
		fracPart += strings.Repeat("0", 9-len(fracPart))
		if ns, err = strconv.ParseInt(fracPart, 10, 32); err != nil {
			return nil, fmt.Errorf("%w: invalid duration nanos: %v", wire.ErrIncorrectValue, err)
		}
	}
	if sec > maxDurationSeconds {
		return nil, fmt.Errorf("%w: duration %q out of range", wire.ErrIncorrectValue, ds)
	}
	if neg {
		sec, ns = -sec, -ns
	}

	m := Duration.New()
	setSecondsNanos(m, sec, int32(ns))
	return m, nil
}

func setSecondsNanos(m *schema.Message, sec int64, ns int32) {
	// zero values stay absent, as a generated message would write them
	if sec != 0 {
		_ = m.Set("seconds", sec)
	}
	if ns != 0 {
		_ = m.Set("nanos", ns)
	}
}

func secondsNanos(m *schema.Message) (int64, int32) {
	sec, _ := schema.Value[int64](m, "seconds")
	ns, _ := schema.Value[int32](m, "nanos")
	return sec, ns
}

func checkType(m *schema.Message, want *schema.Type) error {
	if m == nil || m.Type() != want {
		return fmt.Errorf("%w: expected a %s message", schema.ErrTypeMismatch, want.Name())
	}
	return nil
}
