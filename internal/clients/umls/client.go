package umls

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/httpx"
	"github.com/jnegrete2005/disnet-data-integration/internal/pkg/logger"
)

const defaultBaseURL = "https://uts-ws.nlm.nih.gov/rest"

// Concept is a UMLS concept matched from a source vocabulary code.
type Concept struct {
	CUI  string
	Name string
}

// Client maps NCIt codes to UMLS concepts through the UTS search API. A nil
// concept with a nil error means no mapping exists.
type Client interface {
	NcitToCUI(ctx context.Context, ncitID string) (*Concept, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(log *logger.Logger, baseURL, apiKey string) (Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("umls: missing API key")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return &client{
		log:        log.With("client", "umls"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type searchResponse struct {
	Result struct {
		Results []struct {
			UI   string `json:"ui"`
			Name string `json:"name"`
		} `json:"results"`
	} `json:"result"`
}

func (c *client) NcitToCUI(ctx context.Context, ncitID string) (*Concept, error) {
	params := url.Values{}
	params.Set("string", ncitID)
	params.Set("inputType", "sourceUi")
	params.Set("searchType", "exact")
	params.Set("sabs", "NCI")
	params.Set("apiKey", c.apiKey)

	var resp searchResponse
	u := fmt.Sprintf("%s/search/current?%s", c.baseURL, params.Encode())
	if err := httpx.GetJSON(ctx, c.httpClient, u, &resp); err != nil {
		return nil, fmt.Errorf("umls search %s: %w", ncitID, err)
	}
	results := resp.Result.Results
	if len(results) == 0 || results[0].UI == "" || results[0].UI == "NONE" {
		return nil, nil
	}
	return &Concept{CUI: results[0].UI, Name: results[0].Name}, nil
}
