// Package types defines the entity records, port interfaces, export document
// shapes, and standard errors for the jugglevault storage and backup system.
//
// Entities are plain records: Pattern, TestSession, Tag, the four pattern
// cross-reference pairs, UsageEvent, and WeeklyUsage. The backup and restore
// engines touch them only through the Store and AssetStore ports, so any
// backend that honors the port contracts can be archived and restored.
package types
