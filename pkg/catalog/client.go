package catalog

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/edulabs-io/planctl/pkg/whttp"
)

// source describes where one category key is fetched from and which wrapper
// field its collection endpoint may hide the array behind.
type source struct {
	path    string
	wrapper string
}

var sources = map[CategoryKey]source{
	KeyBook:           {path: "/api/books", wrapper: "books"},
	KeyWorkbook:       {path: "/api/workbooks", wrapper: "workbooks"},
	KeyTestObjective:  {path: "/api/objectivetests", wrapper: "tests"},
	KeyTestSubjective: {path: "/api/subjectivetests", wrapper: "tests"},
}

// Client fetches and normalizes the four catalog collections plus the
// static category mapping.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *retryablehttp.Client // nil means whttp's default client
}

func NewClient(baseURL, token string) *Client {
	return &Client{BaseURL: baseURL, Token: token}
}

// FetchCategory loads one category's collection and normalizes it.
// Errors leave the caller's bucket empty; there is no automatic retry.
func (c *Client) FetchCategory(key CategoryKey) ([]Item, error) {
	src, ok := sources[key]
	if !ok {
		return nil, fmt.Errorf("unknown category key %q", key)
	}

	res, err := whttp.SendHTTPRequest(
		&whttp.WHTTPReq{
			Method:  "GET",
			URL:     c.BaseURL + src.path,
			Headers: []whttp.WHTTPHeader{whttp.BearerHeader(c.Token)},
		}, c.HTTP)
	if err != nil {
		return nil, fmt.Errorf("fetching %s catalog: %w", key, err)
	}
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("fetching %s catalog: %s", key, res.ErrorLabel())
	}

	return NormalizeItems(ExtractItems(res.BodyString, src.wrapper)), nil
}

// FetchTests loads the objective and subjective collections in parallel;
// the two are always presented together under one picker tab. Each bucket
// is normalized independently.
func (c *Client) FetchTests() (objective, subjective []Item, err error) {
	var wg sync.WaitGroup
	var objErr, subErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		objective, objErr = c.FetchCategory(KeyTestObjective)
	}()
	go func() {
		defer wg.Done()
		subjective, subErr = c.FetchCategory(KeyTestSubjective)
	}()
	wg.Wait()

	if objErr != nil {
		return nil, nil, objErr
	}
	if subErr != nil {
		return nil, nil, subErr
	}
	return objective, subjective, nil
}

// LoadInto fetches every key in keys and replaces the matching Index
// buckets. A failed key aborts and leaves that bucket untouched.
func (c *Client) LoadInto(idx Index, keys ...CategoryKey) error {
	for _, key := range keys {
		items, err := c.FetchCategory(key)
		if err != nil {
			return err
		}
		idx[key] = items
	}
	return nil
}

// SubCategoryMapping is the statically known main-category -> subcategory
// names table served by the category collaborator.
type SubCategoryMapping map[string][]string

// FetchCategoryMapping loads the category mapping collaborator.
func (c *Client) FetchCategoryMapping() (SubCategoryMapping, error) {
	res, err := whttp.SendHTTPRequest(
		&whttp.WHTTPReq{
			Method:  "GET",
			URL:     c.BaseURL + "/api/categories",
			Headers: []whttp.WHTTPHeader{whttp.BearerHeader(c.Token)},
		}, c.HTTP)
	if err != nil {
		return nil, fmt.Errorf("fetching category mapping: %w", err)
	}
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("fetching category mapping: %s", res.ErrorLabel())
	}

	mapping := make(SubCategoryMapping)
	for _, cat := range ExtractItems(res.BodyString, "categories") {
		name := cat.Get("name").Str
		if name == "" {
			continue
		}
		var subs []string
		for _, sub := range cat.Get("subcategories").Array() {
			if s := sub.Get("name").Str; s != "" {
				subs = append(subs, s)
			}
		}
		mapping[name] = subs
	}
	return mapping, nil
}
