package types

import "time"

// DatabaseExport is the canonical serialization unit of an archive: one
// flattened row sequence per managed table, in a fixed field order. Rows are
// self-contained; relationships appear only as id pairs. The document exists
// only for the duration of a backup or restore and carries no identity of
// its own beyond the archive that holds it.
type DatabaseExport struct {
	Patterns      []Pattern             `json:"patterns"`
	TestSessions  []TestSession         `json:"test_sessions"`
	Tags          []Tag                 `json:"tags"`
	PatternTags   []PatternTag          `json:"pattern_tags"`
	Prerequisites []PatternPrerequisite `json:"pattern_prerequisites"`
	Dependents    []PatternDependent    `json:"pattern_dependents"`
	Related       []PatternRelated      `json:"pattern_related"`
	UsageEvents   []UsageEvent          `json:"usage_events"`
	WeeklyUsage   []WeeklyUsage         `json:"weekly_usage"`
}

// NewDatabaseExport returns an export document with every table sequence
// allocated, so an empty store serializes as empty arrays rather than nulls.
func NewDatabaseExport() *DatabaseExport {
	return &DatabaseExport{
		Patterns:      []Pattern{},
		TestSessions:  []TestSession{},
		Tags:          []Tag{},
		PatternTags:   []PatternTag{},
		Prerequisites: []PatternPrerequisite{},
		Dependents:    []PatternDependent{},
		Related:       []PatternRelated{},
		UsageEvents:   []UsageEvent{},
		WeeklyUsage:   []WeeklyUsage{},
	}
}

// Add appends a row to the named table sequence. The row must be the pointer
// type produced by Store.ReadAllRows for that table. Returns ErrUnknownTable
// for unrecognized names and ErrInvalidData on a type mismatch.
func (d *DatabaseExport) Add(table string, row any) error {
	switch table {
	case TablePatterns:
		p, ok := row.(*Pattern)
		if !ok {
			return ErrInvalidData
		}
		d.Patterns = append(d.Patterns, *p)
	case TableTestSessions:
		s, ok := row.(*TestSession)
		if !ok {
			return ErrInvalidData
		}
		d.TestSessions = append(d.TestSessions, *s)
	case TableTags:
		t, ok := row.(*Tag)
		if !ok {
			return ErrInvalidData
		}
		d.Tags = append(d.Tags, *t)
	case TablePatternTags:
		x, ok := row.(*PatternTag)
		if !ok {
			return ErrInvalidData
		}
		d.PatternTags = append(d.PatternTags, *x)
	case TablePrerequisites:
		x, ok := row.(*PatternPrerequisite)
		if !ok {
			return ErrInvalidData
		}
		d.Prerequisites = append(d.Prerequisites, *x)
	case TableDependents:
		x, ok := row.(*PatternDependent)
		if !ok {
			return ErrInvalidData
		}
		d.Dependents = append(d.Dependents, *x)
	case TableRelated:
		x, ok := row.(*PatternRelated)
		if !ok {
			return ErrInvalidData
		}
		d.Related = append(d.Related, *x)
	case TableUsageEvents:
		e, ok := row.(*UsageEvent)
		if !ok {
			return ErrInvalidData
		}
		d.UsageEvents = append(d.UsageEvents, *e)
	case TableWeeklyUsage:
		w, ok := row.(*WeeklyUsage)
		if !ok {
			return ErrInvalidData
		}
		d.WeeklyUsage = append(d.WeeklyUsage, *w)
	default:
		return ErrUnknownTable
	}
	return nil
}

// Rows returns the named table sequence as the row pointers accepted by
// Store.InsertRows, in document order.
func (d *DatabaseExport) Rows(table string) ([]any, error) {
	switch table {
	case TablePatterns:
		rows := make([]any, len(d.Patterns))
		for i := range d.Patterns {
			rows[i] = &d.Patterns[i]
		}
		return rows, nil
	case TableTestSessions:
		rows := make([]any, len(d.TestSessions))
		for i := range d.TestSessions {
			rows[i] = &d.TestSessions[i]
		}
		return rows, nil
	case TableTags:
		rows := make([]any, len(d.Tags))
		for i := range d.Tags {
			rows[i] = &d.Tags[i]
		}
		return rows, nil
	case TablePatternTags:
		rows := make([]any, len(d.PatternTags))
		for i := range d.PatternTags {
			rows[i] = &d.PatternTags[i]
		}
		return rows, nil
	case TablePrerequisites:
		rows := make([]any, len(d.Prerequisites))
		for i := range d.Prerequisites {
			rows[i] = &d.Prerequisites[i]
		}
		return rows, nil
	case TableDependents:
		rows := make([]any, len(d.Dependents))
		for i := range d.Dependents {
			rows[i] = &d.Dependents[i]
		}
		return rows, nil
	case TableRelated:
		rows := make([]any, len(d.Related))
		for i := range d.Related {
			rows[i] = &d.Related[i]
		}
		return rows, nil
	case TableUsageEvents:
		rows := make([]any, len(d.UsageEvents))
		for i := range d.UsageEvents {
			rows[i] = &d.UsageEvents[i]
		}
		return rows, nil
	case TableWeeklyUsage:
		rows := make([]any, len(d.WeeklyUsage))
		for i := range d.WeeklyUsage {
			rows[i] = &d.WeeklyUsage[i]
		}
		return rows, nil
	default:
		return nil, ErrUnknownTable
	}
}

// Counts returns the number of rows per managed table.
func (d *DatabaseExport) Counts() map[string]int {
	return map[string]int{
		TablePatterns:      len(d.Patterns),
		TableTestSessions:  len(d.TestSessions),
		TableTags:          len(d.Tags),
		TablePatternTags:   len(d.PatternTags),
		TablePrerequisites: len(d.Prerequisites),
		TableDependents:    len(d.Dependents),
		TableRelated:       len(d.Related),
		TableUsageEvents:   len(d.UsageEvents),
		TableWeeklyUsage:   len(d.WeeklyUsage),
	}
}

// BackupMetadata describes one archive. Row counts, size, and checksum are
// derived after the export document is fully constructed, never authored.
type BackupMetadata struct {
	FormatVersion string         `json:"format_version"` // Semantic version of the archive format.
	AppVersion    string         `json:"app_version"`    // Producing application version.
	SchemaVersion int            `json:"schema_version"` // Source store schema version.
	BackupID      string         `json:"backup_id"`      // UUID v7 assigned at creation.
	CreatedAt     time.Time      `json:"created_at"`
	Environment   string         `json:"environment"` // Free-text descriptor, e.g. "linux/amd64".
	RowCounts     map[string]int `json:"row_counts"`  // Per managed table.
	SizeBytes     int64          `json:"size_bytes"`  // Document plus asset payload bytes.
	Checksum      string         `json:"checksum"`    // Hex SHA-256 over the document encoding.
}
