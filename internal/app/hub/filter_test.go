package hub

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterText_MasksStems(t *testing.T) {
	req := require.New(t)

	req.Equal("*** is this", FilterText("wtf is this"))
	req.Equal("what the ****", FilterText("what the fuck"))
}

func TestFilterText_CaseInsensitive(t *testing.T) {
	require.Equal(t, "***", FilterText("WTF"))
}

func TestFilterText_SuffixAbsorbed(t *testing.T) {
	// The whole suffixed word is replaced, but the mask keeps the stem length.
	require.Equal(t, "**** hell", FilterText("fucking hell"))
}

func TestFilterText_CleanTextUntouched(t *testing.T) {
	req := require.New(t)

	for _, msg := range []string{"hello there", "artful", "", "a: b"} {
		req.Equal(msg, FilterText(msg))
	}
}

func TestFilterText_NoMatchInsideWords(t *testing.T) {
	// \b anchors the stem to a word start; embedded occurrences survive.
	require.Equal(t, "kwtf", FilterText("kwtf"))
}
