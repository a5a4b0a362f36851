// Package task manages background job queuing, processing, and lifecycle.
// Room generation runs here: a request that finds a room missing claims it
// and submits a RoomGenerationTask, which generates, validates and stores
// the content off the request path. Tasks are persisted before they are
// queued so they can be recovered after a restart.
package task
