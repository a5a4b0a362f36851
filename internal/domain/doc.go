// Package domain contains the core learning entities of the application:
// lessons, the rooms generated for them, their content payloads and the
// progress a learner records against them. It is independent of any
// storage, transport or model provider.
package domain
