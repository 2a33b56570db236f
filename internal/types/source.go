package types

// Source is a DISNET provenance row. Drugs, cell lines and foreign maps
// reference it to say which vocabulary an identifier belongs to.
type Source struct {
	SourceID int    `gorm:"column:source_id;primaryKey;autoIncrement" json:"source_id"`
	Name     string `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
}

func (Source) TableName() string { return "source" }
