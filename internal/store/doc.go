// Package store provides storage and pub/sub functionality for observations.
//
// This package is internal to crashwatch and manages the observation history:
// an ordered, newest-first sequence held in memory and mirrored to disk on
// every new observation. It implements a publish-subscribe pattern for
// real-time updates to connected dashboard clients.
//
// The main components are:
//
//   - [Store]: Interface defining recording and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [FileStore]: MemoryStore mirrored to a JSON history file and a CSV table
//   - [Observation]: Storage representation of one recorded value change
//
// Subscribers receive updates via channels with non-blocking sends (slow
// subscribers will miss updates rather than block the polling loop).
package store
