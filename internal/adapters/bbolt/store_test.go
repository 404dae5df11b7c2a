package bbolt

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_nec_fidelity/internal/core/domain"
)

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reports.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

// makeTestReport creates a realistic report for a small dipole deck.
func makeTestReport(id string, at time.Time) *domain.Report {
	radius := 0.001
	return &domain.Report{
		DeckID:    id,
		Name:      "dipole.nec",
		LineCount: 4,
		CardCount: 3,
		Cards: []domain.Card{
			{Type: "SY", LineNumber: 1, RawContent: "SY L=5", Params: []domain.Param{}, Text: "L=5", Errors: []string{}},
			{Type: "GW", LineNumber: 2, RawContent: "GW 1 21 0 0 -L 0 0 L 0.001", Params: []domain.Param{
				domain.IntParam(1), domain.IntParam(21), domain.FloatParam(0), domain.FloatParam(0),
				domain.FloatParam(-5), domain.FloatParam(0), domain.FloatParam(0), domain.FloatParam(5),
				domain.FloatParam(0.001),
			}, Errors: []string{}},
			{Type: "FR", LineNumber: 4, RawContent: "FR 0 1 0 0 14.0", Params: []domain.Param{
				domain.IntParam(0), domain.IntParam(1), domain.IntParam(0), domain.IntParam(0), domain.FloatParam(14),
			}, Errors: []string{"Expected 6-6 params, got 5"}},
		},
		Symbols:     domain.SymbolTable{"L": 5},
		Errors:      []string{"Line 4: Expected 6-6 params, got 5"},
		Reconverted: []string{"SY L=5", "GW 1 21 0 0 -L 0 0 L 0.001", "FR 0 1 0 0 14.0"},
		Fidelity: domain.FidelityReport{
			Results: []domain.FidelityResult{{LineNumber: 1, Type: "SY", Similarity: 1, FieldCountScore: 1, ValueAlignmentScore: 1, OverallScore: 1}},
			Mean:    1,
		},
		Geometry: []domain.Segment{{
			Tag: 1, Segments: 21, Start: [3]float64{0, 0, -5}, End: [3]float64{0, 0, 5}, Radius: &radius, Length: 10,
		}},
		GeometryErrors: []string{},
		FeedPoints:     []domain.FeedPoint{},
		AnalyzedAt:     at,
		Duration:       3 * time.Millisecond,
	}
}

func TestStore_SaveLoadReport(t *testing.T) {
	store, _ := newTestStore(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	report := makeTestReport("abc123", at)

	require.NoError(t, store.SaveReport(report))

	loaded, err := store.LoadReport("abc123")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, report.Name, loaded.Name)
	assert.Equal(t, report.Cards, loaded.Cards)
	assert.Equal(t, report.Symbols, loaded.Symbols)
	assert.Equal(t, report.Errors, loaded.Errors)
	assert.Equal(t, report.Geometry, loaded.Geometry)
	assert.Equal(t, report.Fidelity, loaded.Fidelity)
	assert.True(t, at.Equal(loaded.AnalyzedAt))
	assert.Equal(t, report.Duration, loaded.Duration)
}

func TestStore_LoadMissing(t *testing.T) {
	store, _ := newTestStore(t)
	report, err := store.LoadReport("nope")
	assert.NoError(t, err)
	assert.Nil(t, report)
}

func TestStore_SaveRejectsInvalid(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.SaveReport(nil))
	assert.Error(t, store.SaveReport(&domain.Report{}))
}

func TestStore_SaveOverwrites(t *testing.T) {
	store, _ := newTestStore(t)
	first := makeTestReport("deck", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	second := makeTestReport("deck", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	second.Name = "renamed.nec"

	require.NoError(t, store.SaveReport(first))
	require.NoError(t, store.SaveReport(second))

	list, err := store.ListReports()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "renamed.nec", list[0].Name)
}

func TestStore_ListNewestFirst(t *testing.T) {
	store, _ := newTestStore(t)
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveReport(makeTestReport("a", base)))
	require.NoError(t, store.SaveReport(makeTestReport("b", base.Add(2*time.Hour))))
	require.NoError(t, store.SaveReport(makeTestReport("c", base.Add(time.Hour))))

	list, err := store.ListReports()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "b", list[0].DeckID)
	assert.Equal(t, "c", list[1].DeckID)
	assert.Equal(t, "a", list[2].DeckID)

	assert.Equal(t, 3, list[0].CardCount)
	assert.Equal(t, 1, list[0].ErrorCount)
	assert.Equal(t, 1, list[0].SegmentCount)
	assert.Equal(t, 1.0, list[0].MeanScore)
}

func TestStore_ListEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	list, err := store.ListReports()
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestStore_DeleteIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveReport(makeTestReport("gone", time.Now())))

	require.NoError(t, store.DeleteReport("gone"))
	require.NoError(t, store.DeleteReport("gone"))
	require.NoError(t, store.DeleteReport("never-existed"))

	report, err := store.LoadReport("gone")
	require.NoError(t, err)
	assert.Nil(t, report)

	list, err := store.ListReports()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_SurvivesReopen(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, store.SaveReport(makeTestReport("persist", time.Now())))
	require.NoError(t, store.Close())

	_, err := os.Stat(path)
	require.NoError(t, err)

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	report, err := reopened.LoadReport("persist")
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "dipole.nec", report.Name)
}
