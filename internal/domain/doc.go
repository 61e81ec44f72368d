// Package domain defines the core business types for the SETAL compliance
// intelligence platform.
//
// Types in this package are pure value objects with no behavior, no database
// dependencies, and no HTTP concerns. They are the shared language between
// handlers, services, and the store.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No http.Request, no context.Context in struct fields
//   - JSON tags mirror the Supabase column names
//   - Validation methods are allowed (they're pure functions on the type)
//   - Constants and enums belong here
package domain
