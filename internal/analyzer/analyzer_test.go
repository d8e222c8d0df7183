package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		minCount int
		profile  Profile
		want     FrequencyTable
	}{
		{
			name:     "case insensitive",
			text:     "Madrid madrid MADRID",
			minCount: 3,
			profile:  ProfileDefault,
			want:     FrequencyTable{{"madrid", 3}},
		},
		{
			name:     "english stopwords excluded",
			text:     "the the the cat cat cat",
			minCount: 3,
			profile:  ProfileEN,
			want:     FrequencyTable{{"cat", 3}},
		},
		{
			name:     "below threshold",
			text:     "dog dog",
			minCount: 3,
			profile:  ProfileDefault,
			want:     FrequencyTable{},
		},
		{
			name:     "at threshold",
			text:     "dog dog dog",
			minCount: 3,
			profile:  ProfileDefault,
			want:     FrequencyTable{{"dog", 3}},
		},
		{
			name:     "accented letters kept",
			text:     "año año año",
			minCount: 3,
			profile:  ProfileDefault,
			want:     FrequencyTable{{"año", 3}},
		},
		{
			name:     "upper case accents folded",
			text:     "ÁRBOL árbol Árbol",
			minCount: 3,
			profile:  ProfileDefault,
			want:     FrequencyTable{{"árbol", 3}},
		},
		{
			name:     "first seen order",
			text:     "zeta zeta zeta alfa alfa alfa",
			minCount: 3,
			profile:  ProfileDefault,
			want:     FrequencyTable{{"zeta", 3}, {"alfa", 3}},
		},
		{
			name:     "order is first occurrence not frequency",
			text:     "b a a a b b a",
			minCount: 2,
			profile:  ProfileEN,
			want:     FrequencyTable{{"b", 3}},
		},
		{
			name:     "digits and punctuation separate tokens",
			text:     "war2war, war! 2024",
			minCount: 3,
			profile:  ProfileEN,
			want:     FrequencyTable{{"war", 3}},
		},
		{
			name:     "default stopwords",
			text:     "la casa la casa la casa",
			minCount: 3,
			profile:  ProfileDefault,
			want:     FrequencyTable{{"casa", 3}},
		},
		{
			name:     "empty",
			text:     "",
			minCount: 3,
			profile:  ProfileEN,
			want:     FrequencyTable{},
		},
		{
			name:     "whitespace only",
			text:     " \t\n  ",
			minCount: 3,
			profile:  ProfileEN,
			want:     FrequencyTable{},
		},
		{
			name:     "min count below one behaves like one",
			text:     "solo",
			minCount: 0,
			profile:  ProfileEN,
			want:     FrequencyTable{{"solo", 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.text, tt.minCount, tt.profile)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnalyzeInvariants(t *testing.T) {
	inputs := []string{
		"",
		"The war in the north and the war in the south",
		"El gobierno y la oposición: el gobierno, la oposición, el gobierno",
		"¿Qué pasa? ¡Nada! 123 456 ñandú Ñandú ÑANDÚ",
		strings.Repeat("opinion of the week ", 10),
		"emoji 😀 emoji 😀 emoji",
	}

	for _, in := range inputs {
		for _, p := range []Profile{ProfileDefault, ProfileEN} {
			for _, min := range []int{1, 2, 3, 5} {
				got := Analyze(in, min, p)
				for _, wc := range got {
					assert.GreaterOrEqual(t, wc.Count, min, "input %q", in)
					assert.False(t, IsStopword(p, wc.Word), "stopword %q in result", wc.Word)
				}
				assert.Equal(t, got, Analyze(in, min, p), "not idempotent for %q", in)
			}
		}
	}
}

func TestAnalyzeUnknownProfileUsesDefault(t *testing.T) {
	got := Analyze("de de de casa casa casa", 3, Profile("fr"))
	require.Equal(t, 1, got.Len())
	count, ok := got.Get("casa")
	assert.True(t, ok)
	assert.Equal(t, 3, count)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"el", "país", "opinión", "niño"}, Tokenize("El País: opinión-NIÑO"))
	assert.Nil(t, Tokenize(""))
}

func TestFrequencyTableHelpers(t *testing.T) {
	table := FrequencyTable{{"zeta", 4}, {"alfa", 3}}
	assert.Equal(t, []string{"zeta", "alfa"}, table.Words())
	assert.Equal(t, map[string]int{"zeta": 4, "alfa": 3}, table.Map())

	_, ok := table.Get("beta")
	assert.False(t, ok)
}
