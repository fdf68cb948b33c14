// Package extract implements the one-off recovery of structured data from
// the original monolithic HTML page. The page embedded every dataset as a
// JS object literal in a single <script> block; this package pulls each
// `var NAME = ...;` assignment out, converts the literal to JSON and writes
// one file per dataset into data/.
package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"powermap/internal/dataset"
	"powermap/internal/logging"
)

// Variable describes one embedded dataset: the JS variable it lives in and
// the JSON file it is written to.
type Variable struct {
	Name string
	File string
}

// Variables lists every dataset embedded in the original page, in the
// order they appear in the script block.
var Variables = []Variable{
	{"DEPARTMENTS", "departments.json"},
	{"CROSS_CUTTING", "cross-cutting.json"},
	{"LORDS_WHIPS", "lords-whips.json"},
	{"CHANGELOG", "changelog.json"},
	{"WEALTH_EST", "wealth-estimates.json"},
	{"MP_INFO", "mp-info.json"},
	{"DEPT_BUDGET", "dept-budgets.json"},
	{"WPT", "wealth-percentile-thresholds.json"},
}

// Result summarizes one extracted variable.
type Result struct {
	Variable string
	File     string
	Items    int
	Err      error
}

// Run extracts every variable from srcPath into dataDir and returns a
// result per variable. A single unparseable variable does not abort the
// run; its converted text is saved as data/_debug_<file> for inspection.
func Run(srcPath, dataDir string) ([]Result, error) {
	log := logging.Get(logging.CategoryExtract)

	raw, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("read source html: %w", err)
	}

	script, err := ScriptContent(string(raw))
	if err != nil {
		return nil, err
	}
	log.Info("script block located: %d bytes", len(script))

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	results := make([]Result, 0, len(Variables))
	for _, v := range Variables {
		res := Result{Variable: v.Name, File: v.File}

		literal, err := ExtractVar(script, v.Name)
		if err != nil {
			res.Err = err
			log.Warn("extract %s: %v", v.Name, err)
			results = append(results, res)
			continue
		}

		jsonText := ToJSON(literal)
		var parsed any
		if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
			debugPath := filepath.Join(dataDir, "_debug_"+v.File)
			_ = os.WriteFile(debugPath, []byte(jsonText), 0644)
			res.Err = fmt.Errorf("parse %s: %w (raw saved to %s)", v.Name, err, debugPath)
			log.Warn("%v", res.Err)
			results = append(results, res)
			continue
		}

		if err := dataset.Save(filepath.Join(dataDir, v.File), parsed); err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}

		res.Items = countItems(parsed)
		log.Info("%s -> %s: %d items", v.Name, v.File, res.Items)
		results = append(results, res)
	}

	return results, nil
}

// ScriptContent parses the page and returns the text of the <script>
// element containing the embedded data (identified by the DEPARTMENTS
// assignment).
func ScriptContent(page string) (string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var found string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			text := sb.String()
			if strings.Contains(text, "var DEPARTMENTS") {
				found = text
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if found == "" {
		return "", fmt.Errorf("no script block with embedded data in page")
	}
	return found, nil
}

// ExtractVar returns the object or array literal assigned to `var name` in
// source. The scanner tracks bracket depth and skips string content, so
// braces inside quoted names do not unbalance it.
func ExtractVar(source, name string) (string, error) {
	re := regexp.MustCompile(`var\s+` + regexp.QuoteMeta(name) + `\s*=\s*`)
	loc := re.FindStringIndex(source)
	if loc == nil {
		return "", fmt.Errorf("var %s not found", name)
	}

	rest := source[loc[1]:]
	if len(rest) == 0 {
		return "", fmt.Errorf("var %s: empty assignment", name)
	}

	opener := rest[0]
	var closer byte
	switch opener {
	case '[':
		closer = ']'
	case '{':
		closer = '}'
	default:
		return "", fmt.Errorf("var %s: expected [ or { after assignment, got %q", name, opener)
	}

	depth := 0
	for i := 0; i < len(rest); i++ {
		switch ch := rest[i]; ch {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return rest[:i+1], nil
			}
		case '"', '\'':
			// skip the string body, honoring escapes
			quote := ch
			i++
			for i < len(rest) && rest[i] != quote {
				if rest[i] == '\\' {
					i++
				}
				i++
			}
		}
	}
	return "", fmt.Errorf("var %s: unbalanced literal", name)
}

var (
	unquotedKeyRe   = regexp.MustCompile(`(^|[{,\n])(\s*)(\w+)\s*:`)
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
)

// ToJSON converts a JS object/array literal to JSON text: bare identifier
// keys are quoted and trailing commas removed. The embedded data already
// uses double-quoted strings, so single-quote conversion is not attempted.
func ToJSON(literal string) string {
	s := unquotedKeyRe.ReplaceAllString(literal, `$1$2"$3":`)
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	return s
}

func countItems(v any) int {
	switch t := v.(type) {
	case []any:
		return len(t)
	case map[string]any:
		return len(t)
	default:
		return 1
	}
}

// CrossCheck verifies that every minister named in the department blocks
// has an MP_INFO entry, and counts how many entries carry a parlId. It
// returns the names missing from MP_INFO.
func CrossCheck(departments []dataset.Department, mpInfo dataset.MPInfo) (missing []string, withParlID int) {
	ministers := make(map[string]bool)
	for _, d := range departments {
		if d.Secretary.Name != "" {
			ministers[d.Secretary.Name] = true
		}
		for _, m := range d.MoS {
			ministers[m.Name] = true
		}
		for _, m := range d.PUSS {
			ministers[m.Name] = true
		}
	}

	for name := range ministers {
		if _, ok := mpInfo[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	for _, mp := range mpInfo {
		if mp.ParlID != 0 {
			withParlID++
		}
	}
	return missing, withParlID
}
