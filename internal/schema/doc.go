// Package schema is the static registry of content shapes. Every category
// maps to an overview schema (its tabs and their payload types) and every
// lazily generated room maps to a room schema. Each schema is available both
// as a prompt-ready shape description and as a JSON Schema document used to
// validate model output.
package schema
