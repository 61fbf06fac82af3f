package vocabulary

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elum-utils/chatfilter/models"
)

type logEntry struct {
	level  string
	msg    string
	fields map[string]any
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string, fields map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Debug(msg string, fields map[string]any) { l.add("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields map[string]any)  { l.add("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields map[string]any)  { l.add("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields map[string]any) { l.add("error", msg, fields) }

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

type hit struct {
	start, end int
	term       string
}

func scanAll(v *Vocabulary, text string) []hit {
	var out []hit
	v.ScanLiterals([]rune(text), func(s, e, idx int) {
		out = append(out, hit{s, e, v.Literal(idx).Term})
	})
	return out
}

func TestScanReportsOverlappingLiterals(t *testing.T) {
	v := Load([]models.LiteralEntry{
		{Category: models.CategoryLow, Term: "he"},
		{Category: models.CategoryLow, Term: "she"},
		{Category: models.CategoryLow, Term: "his"},
		{Category: models.CategoryLow, Term: "hers"},
	}, nil, nil, Options{})

	got := scanAll(v, "ushers")
	assert.Equal(t, []hit{
		{1, 4, "she"},
		{2, 4, "he"},
		{2, 6, "hers"},
	}, got)
}

func TestScanRepeatedTerm(t *testing.T) {
	v := Load([]models.LiteralEntry{{Category: models.CategoryLow, Term: "aa"}}, nil, nil, Options{})
	got := scanAll(v, "aaxaa")
	assert.Equal(t, []hit{{0, 2, "aa"}, {3, 5, "aa"}}, got)
}

func TestLoadNormalizesAndDedupes(t *testing.T) {
	v := Load([]models.LiteralEntry{
		{Category: models.CategoryLow, Term: "Bad Word"},
		{Category: models.CategorySevere, Term: "b4dw0rd"},
		{Category: models.CategoryModerate, Term: "badword"},
	}, nil, nil, Options{})

	require.Equal(t, 1, v.LiteralCount())
	lit := v.Literal(0)
	assert.Equal(t, "badword", lit.Term)
	assert.Equal(t, models.CategorySevere, lit.Category)
	assert.Equal(t, "b4dw0rd", lit.Raw)
}

func TestLoadSkipsBadEntries(t *testing.T) {
	logger := &recordingLogger{}
	v := Load(
		[]models.LiteralEntry{
			{Category: models.CategoryLow, Term: "..."},
			{Category: 0, Term: "heck"},
			{Category: models.CategoryHigh, Term: "darn"},
		},
		[]models.PatternEntry{
			{Category: models.CategoryHigh, Expr: "(["},
			{Category: models.CategoryHigh, Expr: "  "},
			{Category: models.CategoryHigh, Expr: "fr+e+"},
		},
		[]string{"classic", "  "},
		Options{Logger: logger},
	)

	assert.Equal(t, 1, v.LiteralCount())
	assert.Equal(t, 1, v.PatternCount())
	assert.Equal(t, 1, v.WhitelistCount())

	skipped := v.Skipped()
	require.Len(t, skipped, 5)
	assert.Equal(t, models.KindLiteral, skipped[0].Entry.Kind)
	assert.ErrorIs(t, skipped[1].Err, errBadCategory)
	assert.Equal(t, "([", skipped[2].Entry.Value)
	assert.Equal(t, models.KindWhitelist, skipped[4].Entry.Kind)

	assert.Equal(t, 5, logger.count("warn"))
	assert.Equal(t, 1, logger.count("debug"))
}

func TestWhitelistLookupIsNormalized(t *testing.T) {
	v := Load(nil, nil, []string{"Cl@ss1c", "Scunthorpe"}, Options{})
	assert.True(t, v.HasWhitelist())
	assert.True(t, v.Whitelisted("classic"))
	assert.True(t, v.Whitelisted("scunthorpe"))
	assert.False(t, v.Whitelisted("class"))
}

func TestNilVocabularyIsEmpty(t *testing.T) {
	var v *Vocabulary
	assert.True(t, v.Empty())
	assert.Zero(t, v.Version())
	assert.Zero(t, v.LiteralCount())
	assert.Zero(t, v.PatternCount())
	assert.Zero(t, v.WhitelistCount())
	assert.Equal(t, Literal{}, v.Literal(0))
	assert.Nil(t, v.Patterns())
	assert.Nil(t, v.Skipped())
	assert.False(t, v.Whitelisted("anything"))
	assert.False(t, v.WhitelistPatterns())
	assert.True(t, v.BuiltAt().IsZero())
	assert.Empty(t, scanAll(v, "anything"))
}

func TestLiteralOutOfRange(t *testing.T) {
	v := FromEntries(models.Entries{Literals: []models.LiteralEntry{{Category: models.CategoryLow, Term: "heck"}}}, Options{})
	assert.Equal(t, "heck", v.Literal(0).Term)
	assert.Equal(t, Literal{}, v.Literal(1))
	assert.Equal(t, Literal{}, v.Literal(-1))
}

func TestVersionsIncrease(t *testing.T) {
	a := Load(nil, nil, nil, Options{})
	b := FromEntries(models.Entries{}, Options{WhitelistPatterns: true})
	assert.Greater(t, b.Version(), a.Version())
	assert.True(t, b.WhitelistPatterns())
	assert.True(t, a.Empty())
}

func TestPatternFindAll(t *testing.T) {
	v := Load(nil, []models.PatternEntry{{Category: models.CategoryHigh, Expr: "fr+e+"}}, nil, Options{})
	require.Len(t, v.Patterns(), 1)
	assert.Equal(t, [][]int{{0, 4}, {7, 10}}, v.Patterns()[0].FindAll("freexxxfre"))
}
