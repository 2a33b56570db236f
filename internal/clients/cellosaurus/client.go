package cellosaurus

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

const defaultBaseURL = "https://api.cellosaurus.org"

// CellLineRecord is the flattened slice of a Cellosaurus entry the pipeline
// cares about: accession, NCIt disease code, and derivation site (tissue).
type CellLineRecord struct {
	Accession *string
	NcitID    *string
	Site      *string
}

// Client reads cell line metadata from Cellosaurus. Nil results with nil
// errors mean the cell line (or the requested field) is absent.
type Client interface {
	// Disease returns the NCIt accession of the first disease annotation of
	// the cell line, or nil when it has none.
	Disease(ctx context.Context, accession string) (*string, error)
	// SearchByCosmic looks a cell line up by its COSMIC cross-reference and
	// returns accession, disease and site in one call.
	SearchByCosmic(ctx context.Context, cosmicID string) (*CellLineRecord, error)
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
		log:        log.With("client", "cellosaurus"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type response struct {
	Cellosaurus struct {
		CellLineList []entry `json:"cell-line-list"`
	} `json:"Cellosaurus"`
}

type entry struct {
	AccessionList []struct {
		Value string `json:"value"`
	} `json:"accession-list"`
	DiseaseList []struct {
		Accession string `json:"accession"`
		Label     string `json:"label"`
	} `json:"disease-list"`
	DerivedFromSiteList []struct {
		Site struct {
			Value string `json:"value"`
		} `json:"site"`
	} `json:"derived-from-site-list"`
}

func (c *client) Disease(ctx context.Context, accession string) (*string, error) {
	if accession == "" {
		return nil, fmt.Errorf("cellosaurus: empty accession")
	}
	var resp response
	u := fmt.Sprintf("%s/cell-line/%s?fields=din&format=json", c.baseURL, url.PathEscape(accession))
	if err := httpx.GetJSON(ctx, c.httpClient, u, &resp); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cellosaurus cell line %s: %w", accession, err)
	}
	lines := resp.Cellosaurus.CellLineList
	if len(lines) == 0 || len(lines[0].DiseaseList) == 0 {
		return nil, nil
	}
	ncit := lines[0].DiseaseList[0].Accession
	if ncit == "" {
		return nil, nil
	}
	return &ncit, nil
}

func (c *client) SearchByCosmic(ctx context.Context, cosmicID string) (*CellLineRecord, error) {
	if cosmicID == "" {
		return nil, nil
	}
	var resp response
	q := url.QueryEscape("COSMIC:" + cosmicID)
	u := fmt.Sprintf("%s/search/cell-line?q=%s&fields=ac,din,derived-from-site&format=json", c.baseURL, q)
	if err := httpx.GetJSON(ctx, c.httpClient, u, &resp); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cellosaurus cosmic %s: %w", cosmicID, err)
	}
	lines := resp.Cellosaurus.CellLineList
	if len(lines) == 0 {
		return nil, nil
	}

	record := &CellLineRecord{}
	line := lines[0]
	if len(line.AccessionList) > 0 && line.AccessionList[0].Value != "" {
		v := line.AccessionList[0].Value
		record.Accession = &v
	}
	if len(line.DiseaseList) > 0 && line.DiseaseList[0].Accession != "" {
		v := line.DiseaseList[0].Accession
		record.NcitID = &v
	}
	if len(line.DerivedFromSiteList) > 0 && line.DerivedFromSiteList[0].Site.Value != "" {
		v := line.DerivedFromSiteList[0].Site.Value
		record.Site = &v
	}
	if record.Accession == nil {
		return nil, nil
	}
	return record, nil
}

func isNotFound(err error) bool {
	var statusErr *httpx.StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound
}
