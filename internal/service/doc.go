// Package service contains the application use cases: creating lessons,
// assembling room content and recording progress. Services coordinate the
// stores in internal/store, apply transactional boundaries with
// store.RunInTransaction, and translate store errors into the sentinels the
// API layer maps to status codes.
//
// Room generation is split between this package and internal/task: the
// room service decides when a room needs generating and claims it, the
// task generates the content and hands it back through task.RoomService.
package service
