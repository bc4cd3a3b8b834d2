package session

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// ==========================
// Settings
// ==========================

func TestNewSettings_Defaults(t *testing.T) {
	s := NewSettings("")
	assert.Equal(t, "en", s.Language())
	assert.Equal(t, Profile{}, s.Profile())
}

func TestSettings_SetLanguage(t *testing.T) {
	s := NewSettings("")
	require.NoError(t, s.SetLanguage(" HI "))
	assert.Equal(t, "hi", s.Language())

	err := s.SetLanguage("fr")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.Equal(t, "hi", s.Language())
}

func TestSettings_SetProfileMerges(t *testing.T) {
	s := NewSettings("en")
	s.SetProfile(ProfilePatch{Name: strPtr("Ramesh"), Crops: []string{"wheat"}})
	got := s.SetProfile(ProfilePatch{Location: strPtr("Nashik")})

	assert.Equal(t, Profile{Name: "Ramesh", Location: "Nashik", Crops: []string{"wheat"}}, got)

	got.Crops[0] = "mutated"
	assert.Equal(t, []string{"wheat"}, s.Profile().Crops)

	got = s.SetProfile(ProfilePatch{Crops: []string{}})
	assert.Empty(t, got.Crops)
	assert.Equal(t, "Ramesh", got.Name)
}

func TestSettings_ConcurrentUse(t *testing.T) {
	s := NewSettings("")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.SetProfile(ProfilePatch{FarmSize: strPtr("2 acres")})
			} else {
				_ = s.Profile()
				_ = s.Language()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, "2 acres", s.Profile().FarmSize)
}

// ==========================
// ProfileRepository
// ==========================

func TestProfileRepository_LoadMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectProfileSQL)).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "location", "crops", "farm_size", "language"}))

	s, found, err := NewProfileRepository(db).Load(context.Background(), "s1", "hi")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "hi", s.Language())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_LoadExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"name", "location", "crops", "farm_size", "language"}).
		AddRow("Sita", "Kanpur", "{wheat,rice}", "5 acres", "hi")
	mock.ExpectQuery(regexp.QuoteMeta(selectProfileSQL)).WithArgs("s1").WillReturnRows(rows)

	s, found, err := NewProfileRepository(db).Load(context.Background(), "s1", "en")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hi", s.Language())
	assert.Equal(t, Profile{Name: "Sita", Location: "Kanpur", Crops: []string{"wheat", "rice"}, FarmSize: "5 acres"}, s.Profile())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_LoadError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectProfileSQL)).WithArgs("s1").WillReturnError(errors.New("connection refused"))

	_, _, err = NewProfileRepository(db).Load(context.Background(), "s1", "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

type arrayArg struct{ want []string }

func (a arrayArg) Match(v driver.Value) bool {
	var got pq.StringArray
	if err := got.Scan(v); err != nil {
		return false
	}
	if len(got) != len(a.want) {
		return false
	}
	for i := range got {
		if got[i] != a.want[i] {
			return false
		}
	}
	return true
}

func TestProfileRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewSettings("")
	s.SetProfile(ProfilePatch{Name: strPtr("Ramesh"), Crops: []string{"cotton"}})

	mock.ExpectExec(regexp.QuoteMeta(upsertProfileSQL)).
		WithArgs("s1", "Ramesh", "", arrayArg{want: []string{"cotton"}}, "", "en").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewProfileRepository(db).Save(context.Background(), "s1", s))
	assert.NoError(t, mock.ExpectationsWereMet())
}
