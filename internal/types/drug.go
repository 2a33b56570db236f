package types

// Drug is a cured drug record keyed by its canonical ChEMBL identifier.
type Drug struct {
	DrugID            string  `gorm:"column:drug_id;primaryKey;size:50" json:"drug_id"`
	SourceID          int     `gorm:"column:source_id;not null" json:"source_id"`
	DrugName          string  `gorm:"column:drug_name;size:255;not null" json:"drug_name"`
	MolecularType     *string `gorm:"column:molecular_type;size:50" json:"molecular_type,omitempty"`
	ChemicalStructure *string `gorm:"column:chemical_structure;type:text" json:"chemical_structure,omitempty"`
	InchiKey          *string `gorm:"column:inchi_key;size:255" json:"inchi_key,omitempty"`
}

func (Drug) TableName() string { return "drug" }

// DrugRaw is the same record shape keyed by the foreign-source identifier
// (PubChem CID for DrugCombDB). A raw row and a cured row describing the same
// molecule are joined through ForeignToChembl.
type DrugRaw struct {
	DrugID            string  `gorm:"column:drug_id;primaryKey;size:50" json:"drug_id"`
	SourceID          int     `gorm:"column:source_id;not null" json:"source_id"`
	DrugName          string  `gorm:"column:drug_name;size:255;not null" json:"drug_name"`
	MolecularType     *string `gorm:"column:molecular_type;size:50" json:"molecular_type,omitempty"`
	ChemicalStructure *string `gorm:"column:chemical_structure;type:text" json:"chemical_structure,omitempty"`
	InchiKey          *string `gorm:"column:inchi_key;size:255" json:"inchi_key,omitempty"`
}

func (DrugRaw) TableName() string { return "drug_raw" }

// ForeignToChembl maps a (foreign_id, foreign_source_id) pair to the cured
// ChEMBL drug. Many foreign identifiers can point at one cured drug.
type ForeignToChembl struct {
	ForeignID       string `gorm:"column:foreign_id;primaryKey;size:50" json:"foreign_id"`
	ForeignSourceID int    `gorm:"column:foreign_source_id;primaryKey" json:"foreign_source_id"`
	ChemblID        string `gorm:"column:chembl_id;size:50;not null" json:"chembl_id"`
}

func (ForeignToChembl) TableName() string { return "foreign_to_chembl" }
