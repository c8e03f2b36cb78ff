// Medfeed - Personalized Article Feed Service
// Copyright 2026 Medfeed Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/medfeed/medfeed

// Package profile owns the per-user preference state: the vector
// profile, read history, keyword frequency table and category
// interests, together with its persistence lifecycle.
//
// The Manager is the single mutation surface. It keeps the in-memory
// profile authoritative for the session and persists best-effort after
// every mutation: a store failure is logged and swallowed, and the
// next successful write supersedes it.
package profile
