package probe

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jmespath/go-jmespath"

	"github.com/hamed0406/uptimecore/internal/domain"
)

func isJSON(resp *httpResponse) bool {
	return strings.Contains(resp.header.Get("Content-Type"), "application/json")
}

// matchResponse compares the (optionally JSON-path selected) body against
// the monitor's expected value.
func matchResponse(m *domain.Monitor, resp *httpResponse) (bool, string) {
	var data any
	if m.JSONPath != "" {
		if !isJSON(resp) {
			return false, msgNotJSON
		}
		var doc any
		if err := json.Unmarshal(resp.body, &doc); err != nil {
			return false, msgJSONPathError
		}
		v, err := jmespath.Search(m.JSONPath, doc)
		if err != nil {
			return false, msgJSONPathError
		}
		data = v
	} else if isJSON(resp) {
		var doc any
		if err := json.Unmarshal(resp.body, &doc); err != nil {
			data = string(resp.body)
		} else {
			data = doc
		}
	} else {
		data = string(resp.body)
	}

	if data == nil {
		return false, msgEmptyResult
	}
	got := stringify(data)

	var ok bool
	switch m.MatchMethod {
	case domain.MatchInclude:
		ok = strings.Contains(got, m.ExpectedValue)
	case domain.MatchRegex:
		re, err := regexp.Compile(m.ExpectedValue)
		ok = err == nil && re.MatchString(got)
	default:
		ok = got == m.ExpectedValue
	}
	if ok {
		return true, msgMatchSuccess
	}
	return false, msgMatchFail
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
