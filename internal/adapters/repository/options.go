package repository

import "time"

// SQLiteOption applies a configuration option to the SQLiteSink.
type SQLiteOption func(*SQLiteSink)

// WithMaxOpenConns sets the connection pool limit.
func WithMaxOpenConns(n int) SQLiteOption {
	return func(s *SQLiteSink) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithBusyTimeout sets how long a writer waits on a locked database.
func WithBusyTimeout(d time.Duration) SQLiteOption {
	return func(s *SQLiteSink) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithJournalMode sets the SQLite journal mode (WAL by default).
func WithJournalMode(mode string) SQLiteOption {
	return func(s *SQLiteSink) {
		if mode != "" {
			s.journalMode = mode
		}
	}
}
