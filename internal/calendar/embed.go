package calendar

import _ "embed"

// defaultCalendar contains the embedded sample school calendar, used when
// no calendar file is configured.
//
//go:embed calendar.json
var defaultCalendar []byte
