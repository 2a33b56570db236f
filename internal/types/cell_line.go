package types

// Disease is keyed by its UMLS CUI.
type Disease struct {
	DiseaseID   string `gorm:"column:disease_id;primaryKey;size:50" json:"disease_id"`
	DiseaseName string `gorm:"column:disease_name;size:255" json:"disease_name"`
}

func (Disease) TableName() string { return "disease" }

// CellLine is keyed by its Cellosaurus accession (CVCL_XXXX). The name is the
// natural key used to join experiments back to their source rows, so it is
// unique on its own.
type CellLine struct {
	CellLineID   string  `gorm:"column:cell_line_id;primaryKey;size:12" json:"cell_line_id"`
	CellLineName string  `gorm:"column:cell_line_name;size:100;not null;uniqueIndex" json:"cell_line_name"`
	SourceID     int     `gorm:"column:source_id;not null" json:"source_id"`
	Tissue       *string `gorm:"column:tissue;size:100" json:"tissue,omitempty"`
	DiseaseID    *string `gorm:"column:disease_id;size:50" json:"disease_id,omitempty"`
}

func (CellLine) TableName() string { return "cell_line" }
