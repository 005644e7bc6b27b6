package plan

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/edulabs-io/planctl/pkg/whttp"
)

const plansPath = "/api/client/credit-recharge-plans"

// Plan mirrors one persisted plan as the store returns it.
type Plan struct {
	ID          string
	Name        string
	Description string
	Duration    int
	Credits     int
	MRP         float64
	OfferPrice  float64
	Category    string
	Items       []LineItem
}

// Client talks to the plan store collaborator.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *retryablehttp.Client // nil means whttp's default client
}

func NewClient(baseURL, token string) *Client {
	return &Client{BaseURL: baseURL, Token: token}
}

type createRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Duration    int        `json:"duration"`
	Credits     int        `json:"credits"`
	MRP         float64    `json:"mrp"`
	OfferPrice  float64    `json:"offerPrice"`
	Category    string     `json:"category"`
	Items       []LineItem `json:"items"`
}

type updateRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Duration    int     `json:"duration"`
	Credits     int     `json:"credits"`
	MRP         float64 `json:"mrp"`
	OfferPrice  float64 `json:"offerPrice"`
	Category    string  `json:"category"`
}

// Create POSTs the draft scalars plus the assembled items. The draft must
// already be normalized and validated.
func (c *Client) Create(d Draft, items []LineItem) (Plan, error) {
	if items == nil {
		items = []LineItem{}
	}
	body, err := json.Marshal(createRequest{
		Name:        d.Name,
		Description: d.Description,
		Duration:    d.DurationDays(),
		Credits:     d.CreditCount(),
		MRP:         d.MRP,
		OfferPrice:  d.OfferPrice,
		Category:    d.Category,
		Items:       items,
	})
	if err != nil {
		return Plan{}, err
	}

	data, err := c.call("POST", plansPath, string(body))
	if err != nil {
		return Plan{}, err
	}
	return parsePlan(data), nil
}

// Get reads one plan by id.
func (c *Client) Get(id string) (Plan, error) {
	data, err := c.call("GET", plansPath+"/"+id, "")
	if err != nil {
		return Plan{}, err
	}
	return parsePlan(data), nil
}

// UpdateScalars PUTs the scalar fields only, never the items array. Line
// items are managed one at a time through AddItem/RemoveItem so a stale
// full-object write cannot clobber concurrent item mutations.
func (c *Client) UpdateScalars(id string, d Draft) (Plan, error) {
	body, err := json.Marshal(updateRequest{
		Name:        d.Name,
		Description: d.Description,
		Duration:    d.DurationDays(),
		Credits:     d.CreditCount(),
		MRP:         d.MRP,
		OfferPrice:  d.OfferPrice,
		Category:    d.Category,
	})
	if err != nil {
		return Plan{}, err
	}

	data, err := c.call("PUT", plansPath+"/"+id, string(body))
	if err != nil {
		return Plan{}, err
	}
	return parsePlan(data), nil
}

// AddItem appends one line item to a persisted plan and returns the
// server's authoritative item list.
func (c *Client) AddItem(planID string, item LineItem) ([]LineItem, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}

	data, err := c.call("POST", plansPath+"/"+planID+"/items", string(body))
	if err != nil {
		return nil, err
	}
	return parseItems(data.Get("items")), nil
}

// RemoveItem deletes one line item and returns the server's authoritative
// item list. Callers must replace their local list with it wholesale; the
// store may apply side effects beyond the removal.
func (c *Client) RemoveItem(planID, lineItemID string) ([]LineItem, error) {
	data, err := c.call("DELETE", plansPath+"/"+planID+"/items/"+lineItemID, "")
	if err != nil {
		return nil, err
	}
	return parseItems(data.Get("items")), nil
}

// call performs one request and unwraps the store's {success, data}
// envelope. A non-2xx status or success:false yields the server's message
// verbatim when one is present.
func (c *Client) call(method, path, body string) (gjson.Result, error) {
	res, err := whttp.SendHTTPRequest(
		&whttp.WHTTPReq{
			Method:  method,
			URL:     c.BaseURL + path,
			Body:    body,
			Headers: []whttp.WHTTPHeader{whttp.BearerHeader(c.Token)},
		}, c.HTTP)
	if err != nil {
		return gjson.Result{}, err
	}

	ok := res.StatusCode >= 200 && res.StatusCode <= 299 && gjson.Get(res.BodyString, "success").Bool()
	if !ok {
		if msg := gjson.Get(res.BodyString, "message").Str; msg != "" {
			return gjson.Result{}, errors.New(msg)
		}
		return gjson.Result{}, fmt.Errorf("plan store: %s", res.ErrorLabel())
	}
	return gjson.Get(res.BodyString, "data"), nil
}

func parsePlan(data gjson.Result) Plan {
	return Plan{
		ID:          firstStr(data, "_id", "id"),
		Name:        data.Get("name").Str,
		Description: data.Get("description").Str,
		Duration:    int(data.Get("duration").Int()),
		Credits:     int(data.Get("credits").Int()),
		MRP:         data.Get("mrp").Float(),
		OfferPrice:  data.Get("offerPrice").Float(),
		Category:    data.Get("category").Str,
		Items:       parseItems(data.Get("items")),
	}
}

func parseItems(items gjson.Result) []LineItem {
	var out []LineItem
	for _, raw := range items.Array() {
		out = append(out, LineItem{
			ID:              firstStr(raw, "_id", "id"),
			ItemType:        raw.Get("itemType").Str,
			ReferenceID:     raw.Get("referenceId").Str,
			Name:            raw.Get("name").Str,
			Quantity:        int(raw.Get("quantity").Int()),
			ExpiresWithPlan: raw.Get("expiresWithPlan").Bool(),
		})
	}
	return out
}

func firstStr(raw gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := raw.Get(p); v.Exists() && v.Str != "" {
			return v.Str
		}
	}
	return ""
}
