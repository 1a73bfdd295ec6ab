package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Solarpaletten/dashkavisa/internal/portal"
)

func TestCollectScriptQuotesSelector(t *testing.T) {
	script := collectScript(`mat-select[formcontrolname*='center']`)
	assert.Contains(t, script, `"mat-select[formcontrolname*='center']"`)
	assert.Contains(t, script, "data-dv-ref")
	assert.Contains(t, script, "__dvRefSeq")
}

func TestRefSelector(t *testing.T) {
	sel := refSelector(portal.Element{Ref: "17"})
	assert.Equal(t, `[data-dv-ref="17"]`, sel)
}
