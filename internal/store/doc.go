// Package store persists the local profile and its records in SQLite.
//
// A device has one active profile, the local user, whose id is kept in
// the settings table. Importing a backup replaces the imported owner's
// profile and records in a single transaction and makes that owner the
// local user.
package store
