package types

// StagedDrug is one row of the local drug resolution ledger. The natural key
// is the normalized drug name; columns fill in as the row advances through
// the staging statuses.
type StagedDrug struct {
	DrugName      string  `gorm:"column:drug_name;primaryKey;size:255" json:"drug_name"`
	PubchemCID    *string `gorm:"column:pubchem_cid;size:50" json:"pubchem_cid,omitempty"`
	Smiles        *string `gorm:"column:smiles;type:text" json:"smiles,omitempty"`
	ChemblID      *string `gorm:"column:chembl_id;size:50" json:"chembl_id,omitempty"`
	InchiKey      *string `gorm:"column:inchi_key;size:255" json:"inchi_key,omitempty"`
	OfficialName  *string `gorm:"column:official_name;size:255" json:"official_name,omitempty"`
	MolecularType *string `gorm:"column:molecular_type;size:50" json:"molecular_type,omitempty"`
	Status        int     `gorm:"column:status;not null;default:0;index" json:"status"`
	ErrorCode     *int    `gorm:"column:error_code" json:"error_code,omitempty"`
	ErrorMsg      *string `gorm:"column:error_msg;type:text" json:"error_msg,omitempty"`
}

func (StagedDrug) TableName() string { return "staging_drugs" }

// StagedCellLine is one row of the local cell line resolution ledger, keyed by
// the original DrugCombDB cell line name.
type StagedCellLine struct {
	OriginalName string  `gorm:"column:original_name;primaryKey;size:100" json:"original_name"`
	Accession    *string `gorm:"column:cellosaurus_accession;size:12" json:"cellosaurus_accession,omitempty"`
	Tissue       *string `gorm:"column:tissue;size:100" json:"tissue,omitempty"`
	NcitID       *string `gorm:"column:ncit_id;size:20" json:"ncit_id,omitempty"`
	UmlsCUI      *string `gorm:"column:umls_cui;size:20" json:"umls_cui,omitempty"`
	DiseaseName  *string `gorm:"column:disease_name;size:255" json:"disease_name,omitempty"`
	Status       int     `gorm:"column:status;not null;default:0;index" json:"status"`
	ErrorMsg     *string `gorm:"column:error_msg;type:text" json:"error_msg,omitempty"`
}

func (StagedCellLine) TableName() string { return "staging_cell_lines" }
