package locator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnHeaderPattern(t *testing.T) {
	tests := []struct {
		column string
		text   string
		want   bool
	}{
		{"To Do", "To Do (2)", true},
		{"To Do", "To Do  (12)", true},
		{"To Do", "To Do(2)", false},
		{"To Do", "ToDo (2)", false},
		{"To Do", "To Do (x)", false},
		{"To Do", "Things To Do (2)", false},
		{"To Do", "To Do (2) extra", false},
		{"In Progress", "In Progress (0)", true},
		{"Review", "Review ()", false},
	}
	for _, tt := range tests {
		t.Run(tt.column+"/"+tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ColumnHeaderPattern(tt.column).MatchString(tt.text))
		})
	}
}

func TestColumnHeaderPatternQuotesName(t *testing.T) {
	re := ColumnHeaderPattern("Q&A (beta)")
	assert.True(t, re.MatchString("Q&A (beta) (3)"))
	assert.False(t, re.MatchString("Q&A beta (3)"))
}

func TestAnyColumnHeaderPattern(t *testing.T) {
	re := AnyColumnHeaderPattern("In Progress", "Done")
	assert.True(t, re.MatchString("Done (1)"))
	assert.True(t, re.MatchString("In Progress (4)"))
	assert.False(t, re.MatchString("To Do (2)"))
}

func TestParseColumnCount(t *testing.T) {
	assert.Equal(t, 2, ParseColumnCount("To Do (2)"))
	assert.Equal(t, 0, ParseColumnCount("Review (0)"))
	assert.Equal(t, 15, ParseColumnCount("Done (15)"))
	assert.Equal(t, -1, ParseColumnCount("Done"))
	assert.Equal(t, -1, ParseColumnCount(""))
}

func TestIsTagText(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Feature", true},
		{"  High Priority ", true},
		{"3/24/2024", false},
		{"Due 12/31/2024", false},
		{"a/b", false},
		{"", false},
		{"   ", false},
		{strings.Repeat("x", TagMaxLength-1), true},
		{strings.Repeat("x", TagMaxLength), false},
		{"This description is long", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTagText(tt.text))
		})
	}
}

func TestFilterTags(t *testing.T) {
	got := FilterTags([]string{" Feature ", "3/24/2024", "Bug", "Assigned to somebody new", "Bug"})
	assert.Equal(t, []string{"Feature", "Bug", "Bug"}, got)
}

func TestChainPrecedence(t *testing.T) {
	// declared out of order on purpose
	chain := NewChain("thing",
		Type("input"),
		Attribute(`input[name="thing"]`),
		Label("Thing"),
		Type("textarea"),
	)

	var kinds []Kind
	for _, s := range chain.Strategies() {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []Kind{KindLabel, KindAttribute, KindType, KindType}, kinds)
	// stable within a kind
	assert.Equal(t, []string{`label="Thing"`, `css=input[name="thing"]`, "css=input", "css=textarea"}, chain.Describe())
	assert.Equal(t, "thing", chain.Element())
}

func TestChainEmptyPanics(t *testing.T) {
	assert.Panics(t, func() { NewChain("nothing") })
}

func TestElementChains(t *testing.T) {
	for _, chain := range []Chain{
		UsernameField(),
		PasswordField(),
		SubmitButton(),
		ErrorBanner(),
		Sidebar(),
		MainContent(),
		TagCandidates(),
		ColumnHeader("Done"),
	} {
		t.Run(chain.Element(), func(t *testing.T) {
			strategies := chain.Strategies()
			require.NotEmpty(t, strategies)
			for i := 1; i < len(strategies); i++ {
				assert.LessOrEqual(t, strategies[i-1].Kind, strategies[i].Kind)
			}
		})
	}

	assert.Equal(t, KindLabel, UsernameField().Strategies()[0].Kind)
	assert.Equal(t, "css=input[type=\"text\"] >> first", UsernameField().Describe()[3])
}
