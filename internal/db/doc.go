// Package db contains the storage proxy used by Scaffold.
//
// Proxy
//   - A `Proxy` owns at most one live connection to its store and a mutex
//     that is held for the full duration of every operation. Operations on
//     one instance are therefore totally ordered.
//   - One concrete type per backend: `SqliteProxy`, `PostgresProxy`,
//     `MySQLProxy`. Build them from `Options` with `New`; callers should
//     depend on the `Proxy` interface only.
//   - Connections open lazily on first use and reopen after `Close`.
//
// Transactions
//   - `AutoCommit` (default): every `Execute` commits on its own.
//   - `Manual`: statements join a pending transaction until `Commit` or
//     `Rollback`; `Close` rolls back whatever is pending.
//   - `ExecuteScript` always runs in its own transaction (or a savepoint
//     inside a pending Manual transaction) and leaves nothing behind on
//     failure.
//
// Scopes
//   - A `Scope` caches one Proxy per name for a unit of work (a request, a
//     CLI invocation, the process). Carry it in a context with `WithScope`
//     and fetch the application database with `FromContext`.
//   - `Scope.End` closes every Proxy the scope created.
//
// Testing notes
//   - Prefer `SqliteOptions{}` (in-memory) in tests that need real DB
//     semantics. Note that every reconnect of an in-memory store starts
//     empty.
//   - Backends that need a server are tested with go-sqlmock through the
//     `sqlOpenFunc` seam.
package db
