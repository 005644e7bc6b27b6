package catalog

import (
	"testing"

	"github.com/tidwall/gjson"
)

func parseOne(t *testing.T, raw string) gjson.Result {
	t.Helper()
	return gjson.Parse(raw)
}
