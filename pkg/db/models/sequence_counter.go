package models

// SequenceCounter backs date-scoped document numbering. One row per
// (tenant, prefix, day); LastSeq is only ever advanced by an atomic
// insert-or-increment, never by read-modify-write.
type SequenceCounter struct {
	TenantID string `gorm:"column:tenant_id;type:uuid;primaryKey"`
	Prefix   string `gorm:"column:prefix;primaryKey"`
	Day      string `gorm:"column:day;primaryKey"`
	LastSeq  int64  `gorm:"column:last_seq;not null;default:0"`
}
