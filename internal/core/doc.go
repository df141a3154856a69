// Package core provides the business logic for configurable table views.
//
// This package holds the domain logic behind the table UI, independent of
// any transport layer. It can be used by web handlers, CLI tools, or tests
// without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Catalog: the immutable list of columns a table offers, with typed
//     accessors that read each column's field from a row.
//   - TableViewState: per-view visibility, order and filter state. Every
//     accepted change to visibility or order is persisted through a [Store].
//   - Service: the entry point for all operations. It owns one [Session]
//     per browser session, and each session owns its table views.
//   - Export: a snapshot of the visible columns and current rows is handed
//     to an [Exporter] under an [ExportLimiter] slot.
//
// # Table Registry
//
// Tables are registered at init time using [Register]:
//
//	core.Register(core.TableDefinition{
//	    Info:       core.TableInfo{Key: "users", Group: "Демо", Label: "Пользователи"},
//	    Catalog:    usersCatalog,
//	    MinVisible: 1,
//	    Rows:       staticRows(users),
//	})
//
// Register panics on an invalid catalog, so configuration mistakes surface
// at startup.
//
// # View State Invariants
//
// For every TableViewState:
//
//   - the order is always a permutation of the catalog keys;
//   - at least MinVisible columns are visible;
//   - filters only reference visible columns.
//
// Operations that would break an invariant are rejected and leave the state
// untouched. Settings that fail to load fall back to the catalog defaults
// and raise a SET001 notification.
//
// # Search
//
// Setting a filter does not change the rows. [Service.Search] snapshots the
// pending filters and later reads keep showing the rows they matched until
// the next search or [Service.ResetSearch].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - SET001-SET002: settings load and save
//   - COL001, TBL001, SES001: unknown column, table or session
//   - EXP001-EXP005: export failures and limits
//   - REQ001-REQ003, STO001, RATE001: request, storage and rate limiting
package core
