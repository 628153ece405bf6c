package core

import "time"

// dateLayout is the ISO-8601 layout used on the wire; spec.md §3 requires
// the serialized form to end with "Z" (UTC).
const dateLayout = "2006-01-02T15:04:05.000Z"

// SerializeDate renders d (converted to UTC) as an ISO-8601 string ending in
// "Z", matching spec.md §3's dateCreated wire format.
func SerializeDate(d time.Time) string {
	return d.UTC().Format(dateLayout)
}

// ParseDate parses a wire date string produced by SerializeDate. Round trip
// is exact to millisecond precision, per spec.md §8 invariant 8.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, wrapErr(ErrKindInput, "date.malformed", err, map[string]string{"VALUE": s})
	}
	return t.UTC(), nil
}

// dateToMillis converts a UTC time to milliseconds since the Unix epoch, the
// wire representation used by the CBL header's dateCreated field (i64 BE).
func dateToMillis(d time.Time) int64 {
	return d.UTC().UnixMilli()
}

func millisToDate(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
