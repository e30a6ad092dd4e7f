package schema

import (
	_ "embed"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/shopstack/shopper-etl/internal/fault"
)

//go:embed mapping.yaml
var mappingYAML []byte

var (
	mappingOnce sync.Once
	mapping     map[string]string
	mappingErr  error
)

// HeaderMapping returns the source CSV header -> staging column mapping from
// the embedded mapping document. The extractor uses it to accept columns in
// any order as long as the header names match exactly.
func HeaderMapping() (map[string]string, error) {
	mappingOnce.Do(func() {
		var doc struct {
			Headers map[string]string `yaml:"headers"`
		}
		if err := yaml.Unmarshal(mappingYAML, &doc); err != nil {
			mappingErr = fault.Wrap(fault.Extract, err, "schema: parse header mapping")
			return
		}
		if len(doc.Headers) != len(Staging.Columns) {
			mappingErr = fault.Newf(fault.Extract,
				"schema: header mapping has %d entries, staging declares %d columns",
				len(doc.Headers), len(Staging.Columns))
			return
		}
		mapping = doc.Headers
	})
	return mapping, mappingErr
}
