package types

// MirrorCombination is a DrugCombDB combination row downloaded into the local
// mirror. Status tracks whether the batch orchestrator has loaded it into the
// warehouse yet.
type MirrorCombination struct {
	ID             int      `gorm:"column:id;primaryKey" json:"id"`
	Drug1          string   `gorm:"column:drug1;size:255;not null" json:"drug1"`
	Drug2          string   `gorm:"column:drug2;size:255;not null" json:"drug2"`
	CellLine       string   `gorm:"column:cell_line;size:100;not null" json:"cell_line"`
	ZIP            *float64 `gorm:"column:zip" json:"zip,omitempty"`
	Bliss          *float64 `gorm:"column:bliss" json:"bliss,omitempty"`
	Loewe          *float64 `gorm:"column:loewe" json:"loewe,omitempty"`
	HSA            *float64 `gorm:"column:hsa" json:"hsa,omitempty"`
	Classification string   `gorm:"column:classification;size:20" json:"classification"`
	Status         string   `gorm:"column:status;size:20;not null;default:pending;index" json:"status"`
}

func (MirrorCombination) TableName() string { return "drug_combinations" }

// Mirror combination statuses.
const (
	MirrorStatusPending   = "pending"
	MirrorStatusProcessed = "processed"
	MirrorStatusError     = "error"
)

// MirrorDrug is the locally mirrored DrugCombDB chemical dump row used by the
// staged drug pipeline's local-first lookup.
type MirrorDrug struct {
	DrugName     string  `gorm:"column:drug_name;primaryKey;size:255" json:"drug_name"`
	PubchemCID   string  `gorm:"column:pubchem_cid;size:50;not null" json:"pubchem_cid"`
	OfficialName *string `gorm:"column:official_name;size:255" json:"official_name,omitempty"`
	Smiles       *string `gorm:"column:smiles;type:text" json:"smiles,omitempty"`
}

func (MirrorDrug) TableName() string { return "drugs" }

// MirrorCellLine is the locally mirrored cell line dump row; CosmicID feeds
// the Cellosaurus fast path.
type MirrorCellLine struct {
	CellName string  `gorm:"column:cell_name;primaryKey;size:100" json:"cell_name"`
	CosmicID *string `gorm:"column:cosmic_id;size:50" json:"cosmic_id,omitempty"`
}

func (MirrorCellLine) TableName() string { return "cell_lines" }
