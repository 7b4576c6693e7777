// Package core defines the domain vocabulary for taskhub.
//
// The package provides:
//   - the User document shape stored in MongoDB
//   - enums for user roles, task status, task priority and project status
//
// Types here carry no persistence logic; the storage package owns the
// database connection.
package core
