package pluginsdk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEscapeQuotesSingleQuotes(t *testing.T) {
	require.Equal(t, `'it'\''s'`, Escape("it's"))
	require.Equal(t, `'plain'`, Escape("plain"))
}
