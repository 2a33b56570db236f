package chembl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/httpx"
	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
)

const defaultBaseURL = "https://www.ebi.ac.uk/chembl/api/data"

// Molecule is the subset of a ChEMBL molecule record the warehouse keeps.
type Molecule struct {
	ChemblID         string
	PrefName         string
	MoleculeType     *string
	CanonicalSmiles  *string
	StandardInchiKey *string
}

// Client fetches cured molecule metadata by ChEMBL ID. A nil molecule with a
// nil error means ChEMBL has no such record.
type Client interface {
	Molecule(ctx context.Context, chemblID string) (*Molecule, error)
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
		log:        log.With("client", "chembl"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type moleculeResponse struct {
	Molecules []struct {
		MoleculeChemblID string  `json:"molecule_chembl_id"`
		PrefName         string  `json:"pref_name"`
		MoleculeType     *string `json:"molecule_type"`
		Structures       *struct {
			CanonicalSmiles  *string `json:"canonical_smiles"`
			StandardInchiKey *string `json:"standard_inchi_key"`
		} `json:"molecule_structures"`
	} `json:"molecules"`
}

func (c *client) Molecule(ctx context.Context, chemblID string) (*Molecule, error) {
	params := url.Values{}
	params.Set("molecule_chembl_id", chemblID)
	params.Set("only", "molecule_chembl_id,pref_name,molecule_type,molecule_structures")

	var resp moleculeResponse
	u := fmt.Sprintf("%s/molecule.json?%s", c.baseURL, params.Encode())
	if err := httpx.GetJSON(ctx, c.httpClient, u, &resp); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("chembl molecule %s: %w", chemblID, err)
	}
	if len(resp.Molecules) == 0 {
		return nil, nil
	}

	m := resp.Molecules[0]
	molecule := &Molecule{
		ChemblID:     m.MoleculeChemblID,
		PrefName:     m.PrefName,
		MoleculeType: m.MoleculeType,
	}
	if m.Structures != nil {
		molecule.CanonicalSmiles = m.Structures.CanonicalSmiles
		molecule.StandardInchiKey = m.Structures.StandardInchiKey
	}
	return molecule, nil
}

func isNotFound(err error) bool {
	var statusErr *httpx.StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound
}
