package registry

// Package registry persists the tracked-account roster and the last match
// seen per account, so restarts never replay notifications.
//
// Two drivers:
//   - "file": plain JSON files, full overwrite via tmp+rename
//   - "sqlite": single database file
