package unichem

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/httpx"
	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
)

const defaultBaseURL = "https://www.ebi.ac.uk/unichem/api/v1"

// UniChem source registry IDs for the two vocabularies this pipeline crosses.
const (
	sourceIDChembl  = 1
	sourceIDPubchem = 22
)

// Mapping is the cross-reference UniChem holds for one compound. ChemblID is
// nil when UniChem knows the compound but ChEMBL does not list it.
type Mapping struct {
	ChemblID *string
	InchiKey *string
}

// Client resolves PubChem compound IDs to ChEMBL IDs. A nil mapping with a
// nil error means UniChem has no record of the compound at all.
type Client interface {
	CompoundMapping(ctx context.Context, pubchemCID string) (*Mapping, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
}

func NewClient(log *logger.Logger, baseURL string) Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &client{
		log:        log.With("client", "unichem"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type compoundsRequest struct {
	Compound string `json:"compound"`
	SourceID int    `json:"sourceID"`
	Type     string `json:"type"`
}

type compoundsResponse struct {
	Compounds []struct {
		StandardInchiKey *string `json:"standardInchiKey"`
		Sources          []struct {
			ID         int    `json:"id"`
			CompoundID string `json:"compoundId"`
		} `json:"sources"`
	} `json:"compounds"`
}

func (c *client) CompoundMapping(ctx context.Context, pubchemCID string) (*Mapping, error) {
	body := compoundsRequest{Compound: pubchemCID, SourceID: sourceIDPubchem, Type: "sourceID"}
	var resp compoundsResponse
	if err := httpx.PostJSON(ctx, c.httpClient, c.baseURL+"/compounds", body, &resp); err != nil {
		return nil, fmt.Errorf("unichem compound %s: %w", pubchemCID, err)
	}
	if len(resp.Compounds) == 0 {
		return nil, nil
	}

	// Looking up by source ID yields at most one compound.
	compound := resp.Compounds[0]
	mapping := &Mapping{InchiKey: compound.StandardInchiKey}
	for _, src := range compound.Sources {
		if src.ID == sourceIDChembl && src.CompoundID != "" {
			id := src.CompoundID
			mapping.ChemblID = &id
			break
		}
	}
	return mapping, nil
}
