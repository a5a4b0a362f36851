// Package store declares the persistence contracts the services depend on:
// lessons, room artifacts, generation claims and progress records, plus the
// error sentinels every implementation maps its failures onto.
//
// Stores take a DBTX and expose WithTx, so a service can group writes with
// RunInTransaction. Implementations live in internal/platform/postgres and,
// for tests, internal/mocks.
package store
