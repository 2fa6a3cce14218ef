// File: utils/constants.go
package utils

import "time"

// SelectionCachePrefix is the prefix used for Redis slot-selection session keys.
const SelectionCachePrefix = "selection:"

// SelectionCacheTTL is the time-to-live for slot-selection sessions.
const SelectionCacheTTL = 15 * time.Minute

// CalendarCachePrefix is the prefix used for cached month-calendar payloads.
const CalendarCachePrefix = "calendar:"

// CalendarCacheTTL bounds how long a rendered month is served from cache.
// Keys carry the current date, so the isToday flag cannot go stale.
const CalendarCacheTTL = time.Hour
