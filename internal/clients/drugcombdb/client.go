package drugcombdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/httpx"
	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
)

const defaultBaseURL = "http://drugcombdb.denglab.org:8888"

// Combination is one drug combination row as served by DrugCombDB. The four
// synergy scores are nullable in the source data.
type Combination struct {
	ID       int      `json:"id"`
	Drug1    string   `json:"drug1"`
	Drug2    string   `json:"drug2"`
	CellLine string   `json:"cellName"`
	Source   string   `json:"source"`
	HSA      *float64 `json:"HSA"`
	Bliss    *float64 `json:"Bliss"`
	Loewe    *float64 `json:"Loewe"`
	ZIP      *float64 `json:"ZIP"`
}

// DrugInfo is the chemical record DrugCombDB keeps per drug name. PubchemCID
// is already stripped of the "CIDs" prefix and leading zeros.
type DrugInfo struct {
	PubchemCID   string
	OfficialName string
	Smiles       *string
}

// CellLineInfo is the cell line record DrugCombDB keeps per cell name.
type CellLineInfo struct {
	Accession string
	Tissue    *string
}

// Client talks to the DrugCombDB combinator API. A nil result with a nil
// error means the entity does not exist there.
type Client interface {
	Combination(ctx context.Context, index int) (*Combination, error)
	DrugInfo(ctx context.Context, drugName string) (*DrugInfo, error)
	CellLineInfo(ctx context.Context, cellLineName string) (*CellLineInfo, error)
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
		log:        log.With("client", "drugcombdb"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// envelope is the {code, msg, data} wrapper every DrugCombDB endpoint uses.
type envelope[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data *T     `json:"data"`
}

func (c *client) Combination(ctx context.Context, index int) (*Combination, error) {
	var resp envelope[Combination]
	u := fmt.Sprintf("%s/integration/list/%d", c.baseURL, index)
	if err := httpx.GetJSON(ctx, c.httpClient, u, &resp); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("drugcombdb combination %d: %w", index, err)
	}
	if resp.Code != 200 || resp.Data == nil {
		c.log.Debug("combination absent", "index", index, "code", resp.Code, "msg", resp.Msg)
		return nil, nil
	}
	resp.Data.ID = index
	return resp.Data, nil
}

type drugPayload struct {
	CIDs             string  `json:"cIds"`
	DrugNameOfficial string  `json:"drugNameOfficial"`
	SmilesString     *string `json:"smilesString"`
}

func (c *client) DrugInfo(ctx context.Context, drugName string) (*DrugInfo, error) {
	var resp envelope[drugPayload]
	u := fmt.Sprintf("%s/chemical/info/%s", c.baseURL, url.PathEscape(drugName))
	if err := httpx.GetJSON(ctx, c.httpClient, u, &resp); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("drugcombdb drug %q: %w", drugName, err)
	}
	if resp.Code != 200 || resp.Data == nil {
		return nil, nil
	}
	return &DrugInfo{
		PubchemCID:   parseCID(resp.Data.CIDs),
		OfficialName: resp.Data.DrugNameOfficial,
		Smiles:       resp.Data.SmilesString,
	}, nil
}

type cellLinePayload struct {
	Accession string  `json:"cellosaurus_assession"`
	Tissue    *string `json:"tissue"`
}

func (c *client) CellLineInfo(ctx context.Context, cellLineName string) (*CellLineInfo, error) {
	var resp envelope[cellLinePayload]
	u := fmt.Sprintf("%s/cellLine/cellName?cellName=%s", c.baseURL, url.QueryEscape(cellLineName))
	if err := httpx.GetJSON(ctx, c.httpClient, u, &resp); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("drugcombdb cell line %q: %w", cellLineName, err)
	}
	if resp.Code != 200 || resp.Data == nil || resp.Data.Accession == "" {
		return nil, nil
	}
	return &CellLineInfo{Accession: resp.Data.Accession, Tissue: resp.Data.Tissue}, nil
}

// parseCID turns "CIDs000003385" into "3385". Anything that does not parse is
// passed through with the prefix stripped.
func parseCID(cids string) string {
	trimmed := strings.TrimPrefix(cids, "CIDs")
	if n, err := strconv.Atoi(trimmed); err == nil {
		return strconv.Itoa(n)
	}
	return trimmed
}

func isNotFound(err error) bool {
	var statusErr *httpx.StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound
}
