package tile

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtile/core/errs"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, s := range []string{"A", "T", "ACGTACGTACGTA", "TTTTTTTTTTTTT", "GATTACAGATTACAGATTACAGATTACAGATT"} {
		k, ok := EncodeString(s)
		require.True(t, ok, s)
		assert.Equal(t, s, Decode(k, len(s)))

		kb, ok := Encode([]byte(s))
		require.True(t, ok)
		assert.Equal(t, k, kb)
	}
}

func TestEncodeRejectsAmbiguous(t *testing.T) {
	for _, s := range []string{"", "ACGTN", "ACGT-", "RYACG"} {
		_, ok := EncodeString(s)
		assert.False(t, ok, s)
	}
	_, ok := EncodeString("ACGTACGTACGTACGTACGTACGTACGTACGTA") // 33 bases
	assert.False(t, ok)
}

func TestEncodeLowerCase(t *testing.T) {
	up, _ := EncodeString("ACGTACGTACGTA")
	lo, ok := EncodeString("acgtacgtacgta")
	require.True(t, ok)
	assert.Equal(t, up, lo)
}

func TestKeyOrderMatchesLexicographic(t *testing.T) {
	tiles := []string{"TTTTTTTTTTTTT", "AAAAAAAAAAAAT", "CAAAAAAAAAAAA", "AAAAAAAAAAAAA", "GGGGGGGGGGGGG", "ACGTACGTACGTA"}
	byKey := append([]string(nil), tiles...)
	sort.Slice(byKey, func(i, j int) bool {
		a, _ := EncodeString(byKey[i])
		b, _ := EncodeString(byKey[j])
		return a < b
	})
	byLex := append([]string(nil), tiles...)
	sort.Strings(byLex)
	assert.Equal(t, byLex, byKey)
}

func TestCheckLength(t *testing.T) {
	assert.NoError(t, CheckLength(13))
	assert.NoError(t, CheckLength(32))
	assert.True(t, errs.IsConfig(CheckLength(0)))
	assert.True(t, errs.IsConfig(CheckLength(33)))
}

func TestEachWindows(t *testing.T) {
	var got []string
	var offs []int
	Each([]byte("ACGTA"), 3, func(off int, t []byte) {
		got = append(got, string(t))
		offs = append(offs, off)
	})
	assert.Equal(t, []string{"ACG", "CGT", "GTA"}, got)
	assert.Equal(t, []int{0, 1, 2}, offs)

	n := 0
	Each([]byte("AC"), 3, func(int, []byte) { n++ })
	assert.Zero(t, n)
}

func TestSet(t *testing.T) {
	s := NewSet()
	a, _ := EncodeString("ACGTACGTACGTA")
	b, _ := EncodeString("AAAAAAAAAAAAA")
	s.Add(a)
	s.Add(b)
	s.Add(a)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(a))
	assert.False(t, s.Contains(a+1))
	assert.Equal(t, []Key{b, a}, s.Keys())
}

func TestRevComp(t *testing.T) {
	assert.Equal(t, "GACT", string(RevComp([]byte("AGTC"))))
	assert.Equal(t, "ACGTNBDHVKMWSRY", string(RevComp([]byte("RYSWKMBDHVNACGT"))))
	assert.Equal(t, "GACT", string(RevComp([]byte("agtc"))))
	assert.Equal(t, "N", string(RevComp([]byte("?"))))
	assert.Nil(t, RevComp(nil))
}
