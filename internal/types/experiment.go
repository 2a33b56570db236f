package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Score names a synergy metric (HSA, Bliss, Loewe, ZIP).
type Score struct {
	ScoreID   int    `gorm:"column:score_id;primaryKey;autoIncrement" json:"score_id"`
	ScoreName string `gorm:"column:score_name;size:30;not null;uniqueIndex" json:"score_name"`
}

func (Score) TableName() string { return "score" }

// ScoreValue is a resolved metric value attached to one experiment.
type ScoreValue struct {
	ScoreID    int     `json:"score_id"`
	ScoreName  string  `json:"score_name"`
	ScoreValue float64 `json:"score_value"`
}

// DrugCombination identifies an unordered set of two or more drugs. MemberKey
// is the sorted, "|"-joined set of drug IDs; its unique index is what makes
// concurrent get-or-create safe.
type DrugCombination struct {
	DcID      int    `gorm:"column:dc_id;primaryKey;autoIncrement" json:"dc_id"`
	MemberKey string `gorm:"column:member_key;size:512;not null;uniqueIndex" json:"member_key"`
}

func (DrugCombination) TableName() string { return "drug_combination" }

// DrugCombDrug is the combination membership junction row.
type DrugCombDrug struct {
	DcID   int    `gorm:"column:dc_id;primaryKey" json:"dc_id"`
	DrugID string `gorm:"column:drug_id;primaryKey;size:50" json:"drug_id"`
}

func (DrugCombDrug) TableName() string { return "drug_comb_drug" }

type ExperimentClassification struct {
	ClassificationID   int    `gorm:"column:classification_id;primaryKey;autoIncrement" json:"classification_id"`
	ClassificationName string `gorm:"column:classification_name;size:50;not null;uniqueIndex" json:"classification_name"`
}

func (ExperimentClassification) TableName() string { return "experiment_classification" }

type ExperimentSource struct {
	SourceID   int    `gorm:"column:source_id;primaryKey;autoIncrement" json:"source_id"`
	SourceName string `gorm:"column:source_name;size:100;not null;uniqueIndex" json:"source_name"`
}

func (ExperimentSource) TableName() string { return "experiment_source" }

// Experiment ties a combination, a cell line, a classification and a source
// together. ContentHash is the dedup key: two loads of the same biological
// observation must collide on it no matter the score insertion order.
type Experiment struct {
	ExperimentID     int    `gorm:"column:experiment_id;primaryKey;autoIncrement" json:"experiment_id"`
	DcID             int    `gorm:"column:dc_id;not null" json:"dc_id"`
	CellLineID       string `gorm:"column:cell_line_id;size:12;not null" json:"cell_line_id"`
	ClassificationID int    `gorm:"column:classification_id;not null" json:"classification_id"`
	SourceID         int    `gorm:"column:source_id;not null" json:"source_id"`
	ContentHash      string `gorm:"column:content_hash;size:64;not null;uniqueIndex" json:"content_hash"`
}

func (Experiment) TableName() string { return "experiment" }

// ExperimentScore stores one metric value of one experiment.
type ExperimentScore struct {
	ExperimentID int     `gorm:"column:experiment_id;primaryKey" json:"experiment_id"`
	ScoreID      int     `gorm:"column:score_id;primaryKey" json:"score_id"`
	ScoreValue   float64 `gorm:"column:score_value;not null" json:"score_value"`
}

func (ExperimentScore) TableName() string { return "experiment_score" }

// ExperimentRecord is the unit handed to the experiment repository.
type ExperimentRecord struct {
	DcID             int
	CellLineID       string
	ClassificationID int
	SourceID         int
	Scores           []ScoreValue
}

// ContentHash computes the experiment identity hash. Scores are sorted by
// (score_id, score_value) first so the hash is stable under any insertion
// order.
func (r ExperimentRecord) ContentHash() string {
	scores := make([]ScoreValue, len(r.Scores))
	copy(scores, r.Scores)
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].ScoreID != scores[j].ScoreID {
			return scores[i].ScoreID < scores[j].ScoreID
		}
		return scores[i].ScoreValue < scores[j].ScoreValue
	})

	var b strings.Builder
	fmt.Fprintf(&b, "dc=%d|cl=%s|class=%d|src=%d", r.DcID, r.CellLineID, r.ClassificationID, r.SourceID)
	for _, s := range scores {
		fmt.Fprintf(&b, "|%d:%.4f", s.ScoreID, s.ScoreValue)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
