package repos

import (
	"context"
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/jnegrete2005/disnet-data-integration/internal/pkg/errors"
	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
	"github.com/jnegrete2005/disnet-data-integration/internal/types"
)

// DrugCombRepo resolves unordered drug sets to combination IDs. Identity is
// the set itself: {A,B} and {B,A} are the same combination, {A,B,C} is not.
type DrugCombRepo interface {
	GetOrCreateCombination(ctx context.Context, tx *gorm.DB, drugIDs []string) (int, error)
}

type drugCombRepo struct {
	db    *gorm.DB
	log   *logger.Logger
	cache *lru.Cache[string, int]
}

func NewDrugCombRepo(db *gorm.DB, baseLog *logger.Logger) DrugCombRepo {
	cache, _ := lru.New[string, int](4096)
	return &drugCombRepo{db: db, log: baseLog.With("repo", "DrugCombRepo"), cache: cache}
}

func (r *drugCombRepo) GetOrCreateCombination(ctx context.Context, tx *gorm.DB, drugIDs []string) (int, error) {
	ids := normalizeDrugSet(drugIDs)
	if len(ids) < 2 {
		return 0, fmt.Errorf("drug combination needs at least two unique drug IDs, got %d: %w",
			len(ids), apperrors.ErrInvalidArgument)
	}
	memberKey := strings.Join(ids, "|")

	if dcID, ok := r.cache.Get(memberKey); ok {
		return dcID, nil
	}
	dbc := dbOr(r.db, tx).WithContext(ctx)

	// Exact set match: the member count equals the input size and every
	// member is in the input set. Subsets and supersets both fail one side.
	var dcID int
	res := dbc.Raw(`
		SELECT dc_id
		FROM drug_comb_drug
		GROUP BY dc_id
		HAVING COUNT(*) = ?
		   AND SUM(CASE WHEN drug_id IN ? THEN 1 ELSE 0 END) = ?`,
		len(ids), ids, len(ids),
	).Scan(&dcID)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		r.cache.Add(memberKey, dcID)
		return dcID, nil
	}

	combination := types.DrugCombination{MemberKey: memberKey}
	existed, err := insertIfAbsent(dbc, &combination)
	if err != nil {
		return 0, err
	}
	if existed {
		// Another writer inserted the same set; the member_key unique index
		// turned the race into a lookup.
		if err := dbc.Where("member_key = ?", memberKey).First(&combination).Error; err != nil {
			return 0, err
		}
		r.cache.Add(memberKey, combination.DcID)
		return combination.DcID, nil
	}

	links := make([]types.DrugCombDrug, 0, len(ids))
	for _, id := range ids {
		links = append(links, types.DrugCombDrug{DcID: combination.DcID, DrugID: id})
	}
	if err := dbc.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
		return 0, err
	}

	r.log.Debug("Created drug combination", "dc_id", combination.DcID, "members", len(ids))
	r.cache.Add(memberKey, combination.DcID)
	return combination.DcID, nil
}

func normalizeDrugSet(drugIDs []string) []string {
	seen := make(map[string]struct{}, len(drugIDs))
	out := make([]string, 0, len(drugIDs))
	for _, id := range drugIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
