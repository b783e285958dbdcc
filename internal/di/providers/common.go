package providers

import "time"

// shutdownTimeout bounds graceful shutdown for the HTTP server and the
// Badger store. Badger flushes pending writes on Close, so this needs to
// be generous enough for a busy value log.
const shutdownTimeout = 30 * time.Second
