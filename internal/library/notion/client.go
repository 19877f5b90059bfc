package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v6"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/notion-blog/library/log"
)

const (
	// maxPageChunks caps the loadPageChunk pagination loop.
	maxPageChunks = 20
	// chunkLimit is the number of blocks requested per chunk.
	chunkLimit = 100
	// collectionQueryLimit is the number of rows requested per view.
	collectionQueryLimit = 999
	// logBodyLimit caps the number of response bytes logged for debugging.
	logBodyLimit = 2048
)

// Client fetches the raw record map of a page and its collections.
type Client interface {
	FetchPageTree(ctx context.Context, pageID string) (*RecordMap, error)
}

var _ Client = new(HTTPClient)

// HTTPClient talks to the notion web api over http.
type HTTPClient struct {
	baseURL string
	httpcli *http.Client
	logger  logSDK.Logger
}

// NewHTTPClient creates a client for the api at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration, logger logSDK.Logger) (*HTTPClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("notion api base url is empty")
	}
	if logger == nil {
		logger = log.Logger.Named("notion")
	}

	httpcli, err := gutils.NewHTTPClient(
		gutils.WithHTTPClientTimeout(timeout),
	)
	if err != nil {
		return nil, errors.Wrap(err, "new http client")
	}

	return &HTTPClient{
		baseURL: baseURL,
		httpcli: httpcli,
		logger:  logger,
	}, nil
}

type chunkCursor struct {
	Stack [][]json.RawMessage `json:"stack"`
}

type loadPageChunkRequest struct {
	PageID          string      `json:"pageId"`
	Limit           int         `json:"limit"`
	Cursor          chunkCursor `json:"cursor"`
	ChunkNumber     int         `json:"chunkNumber"`
	VerticalColumns bool        `json:"verticalColumns"`
}

type loadPageChunkResponse struct {
	RecordMap *RecordMap  `json:"recordMap"`
	Cursor    chunkCursor `json:"cursor"`
}

type queryCollectionRequest struct {
	Collection     idRef          `json:"collection"`
	CollectionView idRef          `json:"collectionView"`
	Loader         map[string]any `json:"loader"`
}

type idRef struct {
	ID string `json:"id"`
}

type queryCollectionResponse struct {
	Result struct {
		ReducerResults struct {
			CollectionGroupResults *CollectionGroupResult `json:"collection_group_results"`
		} `json:"reducerResults"`
		BlockIDs []string `json:"blockIds"`
	} `json:"result"`
	RecordMap *RecordMap `json:"recordMap"`
}

// FetchPageTree loads every chunk of pageID, then queries each view
// of every collection block found in the page.
func (c *HTTPClient) FetchPageTree(ctx context.Context, pageID string) (*RecordMap, error) {
	id := IDToUUID(pageID)
	if id == "" {
		return nil, errors.New("empty page id")
	}

	tree := new(RecordMap)
	cursor := chunkCursor{Stack: [][]json.RawMessage{}}
	for chunk := 0; chunk < maxPageChunks; chunk++ {
		resp := new(loadPageChunkResponse)
		if err := c.post(ctx, "loadPageChunk", loadPageChunkRequest{
			PageID:      id,
			Limit:       chunkLimit,
			Cursor:      cursor,
			ChunkNumber: chunk,
		}, resp); err != nil {
			return nil, errors.Wrapf(err, "load page chunk %d of %q", chunk, id)
		}

		tree.Merge(resp.RecordMap)
		if len(resp.Cursor.Stack) == 0 {
			break
		}
		cursor = resp.Cursor
	}

	for _, blockID := range sortedKeys(tree.Block) {
		block := tree.BlockValue(blockID)
		if block == nil || !IsCollectionType(block.Type) || block.CollectionID == "" {
			continue
		}

		for _, viewID := range block.ViewIDs {
			res, rm, err := c.queryCollection(ctx, block.CollectionID, viewID)
			if err != nil {
				return nil, errors.Wrapf(err, "query collection %q view %q", block.CollectionID, viewID)
			}

			tree.Merge(rm)
			tree.SetCollectionQuery(block.CollectionID, viewID, res)
		}
	}

	return tree, nil
}

func (c *HTTPClient) queryCollection(ctx context.Context,
	collectionID, viewID string) (*CollectionQueryResult, *RecordMap, error) {
	resp := new(queryCollectionResponse)
	if err := c.post(ctx, "queryCollection", queryCollectionRequest{
		Collection:     idRef{ID: collectionID},
		CollectionView: idRef{ID: viewID},
		Loader: map[string]any{
			"type": "reducer",
			"reducers": map[string]any{
				"collection_group_results": map[string]any{
					"type":  "results",
					"limit": collectionQueryLimit,
				},
			},
			"sort":         []any{},
			"searchQuery":  "",
			"userTimeZone": "UTC",
		},
	}, resp); err != nil {
		return nil, nil, errors.WithStack(err)
	}

	return &CollectionQueryResult{
		BlockIDs:               resp.Result.BlockIDs,
		CollectionGroupResults: resp.Result.ReducerResults.CollectionGroupResults,
	}, resp.RecordMap, nil
}

func (c *HTTPClient) post(ctx context.Context, method string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	endpoint := c.baseURL + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrapf(err, "new request to %q", endpoint)
	}
	req.Header.Set("Content-Type", "application/json")

	startAt := time.Now()
	resp, err := c.httpcli.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request %q", endpoint)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response body")
	}

	c.logger.Debug("notion api call",
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Int("size", len(respBody)),
		zap.Duration("cost", time.Since(startAt)),
	)

	if resp.StatusCode != http.StatusOK {
		msg := respBody
		if len(msg) > logBodyLimit {
			msg = msg[:logBodyLimit]
		}
		return errors.Errorf("notion %s returned status %d: %s", method, resp.StatusCode, msg)
	}

	if err = json.Unmarshal(respBody, out); err != nil {
		return errors.Wrapf(err, "decode %s response", method)
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
