// Package mocks provides centralized test doubles shared across packages.
//
// The stores are in-memory implementations of the interfaces in
// internal/store with the same observable semantics as the Postgres
// stores: overviews are insert-if-absent, question batches are appended
// and read back latest-first, and generation claims admit one owner per
// (lesson, room). Each store exposes error fields so tests can inject
// failures for a single operation.
//
// Usage:
//
//	lessons := mocks.NewLessonStore()
//	artifacts := mocks.NewArtifactStore()
//	artifacts.GetRoomErr = errors.New("db down")
package mocks
