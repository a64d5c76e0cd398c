// Package repository defines the persistence port of the lineup service
// and its MySQL implementation.  The sentinel errors below are shared by
// every Store implementation so that the lineup layer can distinguish
// between failure scenarios without knowing which engine is in use.
// For example, ErrNotFound indicates that a show or finalist id is
// unknown, while ErrRankTaken signals that a write would place two
// occupants in the same lineup slot.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
// The lineup layer translates it into a NOT_FOUND result.
var ErrNotFound = errors.New("not found")

// ErrRankTaken is returned when an insert or update would give two
// finalists of the same show the same non-null rank.  MySQL reports
// it through the uq_finalists_show_rank unique index.
var ErrRankTaken = errors.New("rank already taken")

// ErrDuplicateMember is returned when a performer is designated twice
// for the same show (uq_finalists_show_user).
var ErrDuplicateMember = errors.New("performer already in lineup")
